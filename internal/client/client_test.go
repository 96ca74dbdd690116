package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staleGate holds requests carrying the old token until n of them arrived,
// so every caller sees its 401 before any refresh starts.
type staleGate struct {
	n       int32
	arrived int32
	all     chan struct{}
}

func newStaleGate(n int) *staleGate {
	return &staleGate{n: int32(n), all: make(chan struct{})}
}

func (g *staleGate) wait() {
	if atomic.AddInt32(&g.arrived, 1) == g.n {
		close(g.all)
	}
	select {
	case <-g.all:
	case <-time.After(2 * time.Second):
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDo_ConcurrentUnauthorizedSharesOneRefresh(t *testing.T) {
	const callers = 10
	gate := newStaleGate(callers)
	var refreshes int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case refreshPath:
			atomic.AddInt32(&refreshes, 1)
			time.Sleep(20 * time.Millisecond)
			writeJSON(w, http.StatusOK, tokenPair{AccessToken: "new", RefreshToken: "r2", ExpiresIn: 900})
		case "/api/me":
			if r.Header.Get("Authorization") == "Bearer new" {
				writeJSON(w, http.StatusOK, User{ID: "u1", Email: "jane@example.com"})
				return
			}
			gate.wait()
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"})
	c := New(srv.URL, store)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := c.Me(context.Background())
			if err == nil && u.ID != "u1" {
				err = errors.New("unexpected user")
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	tokens, _ := store.Load()
	assert.Equal(t, "new", tokens.AccessToken)
	assert.Equal(t, "r2", tokens.RefreshToken)
}

func TestDo_RefreshFailureClearsSessionOnce(t *testing.T) {
	const callers = 5
	gate := newStaleGate(callers)
	var refreshes, hookCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case refreshPath:
			atomic.AddInt32(&refreshes, 1)
			time.Sleep(20 * time.Millisecond)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		default:
			gate.wait()
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "revoked", Role: domain.RoleTrainer})
	c := New(srv.URL, store, WithOnAuthFailure(func(err error) {
		atomic.AddInt32(&hookCalls, 1)
		assert.ErrorIs(t, err, ErrSessionExpired)
	}))

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListCustomers(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))

	tokens, _ := store.Load()
	assert.Equal(t, Tokens{}, tokens)
}

func TestDo_SecondUnauthorizedIsNotRetried(t *testing.T) {
	var refreshes, calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			atomic.AddInt32(&refreshes, 1)
			writeJSON(w, http.StatusOK, tokenPair{AccessToken: "new", RefreshToken: "r2"})
			return
		}
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "nope"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"}))
	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "nope", apiErr.Message())
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_WithoutRefreshTokenReturnsAPIError(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			atomic.AddInt32(&refreshes, 1)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization header is required"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryStore(Tokens{}))
	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshes))
}

func TestLogin_StoresSessionAndRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, loginResponse{
			tokenPair: tokenPair{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 900},
			User:      User{ID: "u1", Email: "admin@example.com", Role: domain.RoleAdmin},
		})
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{})
	c := New(srv.URL, store)
	u, err := c.Login(context.Background(), "admin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	tokens, _ := store.Load()
	assert.Equal(t, Tokens{AccessToken: "a1", RefreshToken: "r1", Role: domain.RoleAdmin, Email: "admin@example.com"}, tokens)
}

func TestGetRecipe_UsesRoleSpecificPath(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		writeJSON(w, http.StatusOK, domain.Recipe{Name: "Oats"})
	}))
	defer srv.Close()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleTrainer, domain.RoleCustomer} {
		c := New(srv.URL, NewMemoryStore(Tokens{AccessToken: "a", Role: role}))
		r, err := c.GetRecipe(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "Oats", r.Name)
	}
	assert.Equal(t, []string{"/api/admin/recipes/abc", "/api/recipes/abc", "/api/recipes/abc"}, paths)
}

func TestRecipePath(t *testing.T) {
	assert.Equal(t, "/api/admin/recipes/1", RecipePath(domain.RoleAdmin, "1"))
	assert.Equal(t, "/api/recipes/1", RecipePath(domain.RoleTrainer, "1"))
	assert.Equal(t, "/api/recipes/1", RecipePath(domain.RoleCustomer, "1"))
	assert.Equal(t, "/api/recipes/a%2Fb", RecipePath(domain.RoleCustomer, "a/b"))
}

func TestUploadProfileImage_ValidatesBeforeNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		file, header, err := r.FormFile("image")
		if assert.NoError(t, err) {
			file.Close()
			assert.Equal(t, domain.MaxImageSize, header.Size)
			assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		}
		writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "https://cdn.example.com/me.png"})
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryStore(Tokens{AccessToken: "a", RefreshToken: "r"}))
	ctx := context.Background()

	url, err := c.UploadProfileImage(ctx, "me.png", "image/png", make([]byte, domain.MaxImageSize))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.png", url)

	_, err = c.UploadProfileImage(ctx, "big.png", "image/png", make([]byte, domain.MaxImageSize+1))
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)

	_, err = c.UploadProfileImage(ctx, "cat.gif", "image/gif", []byte("GIF89a"))
	assert.ErrorIs(t, err, domain.ErrImageTypeNotAllowed)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExportPDF_FilenameFromDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in ExportRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "plan-1", in.MealPlanID)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="meal-plan-cut-phase-2026-10-18.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.3"))
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryStore(Tokens{AccessToken: "a"}))
	f, err := c.ExportPDF(context.Background(), ExportRequest{MealPlanID: "plan-1"})
	require.NoError(t, err)
	assert.Equal(t, "meal-plan-cut-phase-2026-10-18.pdf", f.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), f.Data)

	assert.Equal(t, "export.pdf", attachmentFilename("", "export.pdf"))
	assert.Equal(t, "export.pdf", attachmentFilename("attachment", "export.pdf"))
}

func TestFileStore_RoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)

	empty, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, empty)

	want := Tokens{AccessToken: "a", RefreshToken: "r", Role: domain.RoleCustomer, Email: "c@example.com"}
	require.NoError(t, s.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, got)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestDo_CancelledCallerDoesNotEndSharedRefresh(t *testing.T) {
	var refreshes, hookCalls int32
	refreshStarted := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := r.Header.Get("Authorization")
		switch {
		case r.URL.Path == refreshPath:
			if atomic.AddInt32(&refreshes, 1) == 1 {
				close(refreshStarted)
			}
			time.Sleep(150 * time.Millisecond)
			writeJSON(w, http.StatusOK, tokenPair{AccessToken: "new", RefreshToken: "r2"})
		case bearer == "Bearer new":
			writeJSON(w, http.StatusOK, []domain.Customer{})
		case r.URL.Path == "/api/trainer/customers":
			// The second caller's 401 lands while the first caller's refresh runs.
			<-refreshStarted
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"})
	c := New(srv.URL, store, WithOnAuthFailure(func(error) { atomic.AddInt32(&hookCalls, 1) }))

	impatient, cancel := context.WithCancel(context.Background())
	go func() {
		<-refreshStarted
		cancel()
	}()

	var wg sync.WaitGroup
	var impatientErr, patientErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, impatientErr = c.Me(impatient)
	}()
	go func() {
		defer wg.Done()
		_, patientErr = c.ListCustomers(context.Background())
	}()
	wg.Wait()

	assert.ErrorIs(t, impatientErr, context.Canceled)
	assert.NotErrorIs(t, impatientErr, ErrSessionExpired)
	assert.NoError(t, patientErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hookCalls))

	tokens, _ := store.Load()
	assert.Equal(t, "new", tokens.AccessToken)
	assert.Equal(t, "r2", tokens.RefreshToken)
}

func TestDo_RefreshTransportErrorKeepsSession(t *testing.T) {
	var hookCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			// Drop the connection without an HTTP answer.
			hj, ok := w.(http.Hijacker)
			if assert.True(t, ok) {
				conn, _, err := hj.Hijack()
				if assert.NoError(t, err) {
					conn.Close()
				}
			}
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"})
	c := New(srv.URL, store, WithOnAuthFailure(func(error) { atomic.AddInt32(&hookCalls, 1) }))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hookCalls))

	tokens, _ := store.Load()
	assert.Equal(t, Tokens{AccessToken: "old", RefreshToken: "r1"}, tokens)
}

func TestDo_RefreshWithoutTokensEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			writeJSON(w, http.StatusOK, map[string]string{"accessToken": "new"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"})
	_, err := New(srv.URL, store).Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	tokens, _ := store.Load()
	assert.Equal(t, Tokens{}, tokens)
}

func TestDo_LateUnauthorizedReusesRefreshedToken(t *testing.T) {
	var refreshes int32
	slowArrived := make(chan struct{})
	fastRetried := make(chan struct{})
	var retriedOnce sync.Once
	var slowRetryAuth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := r.Header.Get("Authorization")
		switch r.URL.Path {
		case refreshPath:
			atomic.AddInt32(&refreshes, 1)
			writeJSON(w, http.StatusOK, tokenPair{AccessToken: "new", RefreshToken: "r2"})
		case "/api/me":
			if bearer == "Bearer new" {
				// The refreshed pair is saved before the retry is sent.
				retriedOnce.Do(func() { close(fastRetried) })
				writeJSON(w, http.StatusOK, User{ID: "u1"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		case "/api/trainer/customers":
			if bearer == "Bearer new" {
				slowRetryAuth.Store(bearer)
				writeJSON(w, http.StatusOK, []domain.Customer{})
				return
			}
			close(slowArrived)
			<-fastRetried
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}
	}))
	defer srv.Close()

	store := NewMemoryStore(Tokens{AccessToken: "old", RefreshToken: "r1"})
	c := New(srv.URL, store)

	slowDone := make(chan error, 1)
	go func() {
		_, err := c.ListCustomers(context.Background())
		slowDone <- err
	}()
	<-slowArrived

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-slowDone)

	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, "Bearer new", slowRetryAuth.Load())
}

type countingTransport struct {
	calls int32
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&t.calls, 1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, User{ID: "u1"})
	}))
	defer srv.Close()

	transport := &countingTransport{}
	c := New(srv.URL, NewMemoryStore(Tokens{AccessToken: "a"}),
		WithHTTPClient(&http.Client{Transport: transport, Timeout: time.Second}))
	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&transport.calls))
}
