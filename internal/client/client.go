// Package client is an HTTP client for the platform API. It attaches the
// stored access token to every request and, when the server answers 401,
// refreshes the session once on behalf of all concurrent callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath    = "/api/auth/refresh_token"
	refreshFlight  = "refresh"
	defaultTimeout = 30 * time.Second
	refreshTimeout = 15 * time.Second
)

// Request describes one API call. Body is kept as bytes so the request can
// be replayed after a token refresh.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks to the API on behalf of one logged-in user.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         TokenStore
	log           *zap.Logger
	onAuthFailure func(error)

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithOnAuthFailure registers a hook run once per failed refresh, for
// example to send the user back to the login screen.
func WithOnAuthFailure(fn func(error)) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Store() TokenStore { return c.store }

// Do sends an authenticated request. A 401 triggers one refresh and one
// retry; a 401 on the retry is returned as an *APIError.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	tokens, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, r, tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || tokens.RefreshToken == "" {
		return checkStatus(resp)
	}

	accessToken, err := c.refresh(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	resp, err = c.send(ctx, r, accessToken)
	if err != nil {
		return nil, err
	}
	return checkStatus(resp)
}

// refresh exchanges the refresh token for a new pair. Concurrent callers
// share a single in-flight refresh. A caller whose 401 arrives after another
// caller already refreshed gets the stored token without a network call.
//
// The shared refresh is detached from the caller that started it: a caller
// that gives up returns its own ctx error while the refresh carries on for
// the others.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshFlight, func() (interface{}, error) {
		current, err := c.store.Load()
		if err != nil {
			return "", err
		}
		if current.AccessToken != "" && current.AccessToken != stale {
			return current.AccessToken, nil
		}
		if current.RefreshToken == "" {
			// Already cleared by an earlier failed refresh.
			return "", sessionExpired(errNoRefreshToken)
		}

		refreshCtx, cancel := context.WithTimeout(detached, refreshTimeout)
		defer cancel()
		pair, err := c.callRefresh(refreshCtx, current.RefreshToken)
		if err != nil {
			if refreshRejected(err) {
				return "", c.failSession(err)
			}
			// Transport failure: the refresh token may still be good.
			return "", fmt.Errorf("refresh access token: %w", err)
		}
		current.AccessToken = pair.AccessToken
		current.RefreshToken = pair.RefreshToken
		if err := c.store.Save(current); err != nil {
			return "", fmt.Errorf("save refreshed tokens: %w", err)
		}
		c.log.Debug("access token refreshed")
		return current.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.log.Debug("joined in-flight token refresh")
		}
		return res.Val.(string), nil
	}
}

// refreshRejected reports whether the server answered the refresh and the
// answer means the session is over.
func refreshRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) || errors.Is(err, errBadRefreshResponse)
}

func (c *Client) failSession(cause error) error {
	c.log.Warn("token refresh failed, clearing session", zap.Error(cause))
	if err := c.store.Clear(); err != nil {
		c.log.Error("failed to clear token store", zap.Error(err))
	}
	err := sessionExpired(cause)
	if c.onAuthFailure != nil {
		c.onAuthFailure(err)
	}
	return err
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (c *Client) callRefresh(ctx context.Context, refreshToken string) (*tokenPair, error) {
	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: refreshPath, Body: body, Header: jsonHeader()}, "")
	if err != nil {
		return nil, err
	}
	if _, err := checkStatus(resp); err != nil {
		return nil, err
	}
	var pair tokenPair
	if err := json.Unmarshal(resp.Body, &pair); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRefreshResponse, err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing tokens", errBadRefreshResponse)
	}
	return &pair, nil
}

// send performs a single round trip and reads the whole body.
func (c *Client) send(ctx context.Context, r Request, accessToken string) (*Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func checkStatus(resp *Response) (*Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp, nil
}

func jsonHeader() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

// doJSON sends in (if non-nil) as JSON and decodes the response into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	r := Request{Method: method, Path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return err
		}
		r.Body = body
		r.Header = jsonHeader()
	}
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
