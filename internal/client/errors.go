package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the access token could not be
// refreshed. The stored tokens have been cleared; the user must log in.
var ErrSessionExpired = errors.New("session expired, please log in again")

// errNoRefreshToken is the cause when there is nothing to refresh with.
var errNoRefreshToken = errors.New("no refresh token")

// errBadRefreshResponse marks a 2xx refresh answer that carries no usable tokens.
var errBadRefreshResponse = errors.New("invalid refresh response")

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Message returns the server's {"error": "..."} text, if any.
func (e *APIError) Message() string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(e.Body, &body) == nil {
		return body.Error
	}
	return ""
}

func sessionExpired(cause error) error {
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}
