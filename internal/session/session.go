// Package session keeps opaque refresh tokens and the user they belong to.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, expired or already rotated tokens.
var ErrNotFound = errors.New("session not found")

// Store persists refresh-token sessions.
type Store interface {
	// Create issues a new refresh token for userID valid for ttl.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Rotate consumes token and issues a replacement for the same user.
	// A token can be rotated at most once.
	Rotate(ctx context.Context, token string, ttl time.Duration) (userID, newToken string, err error)
	// Revoke deletes the token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}
