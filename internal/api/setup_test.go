package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository/memory"
	"fitmeal/platform/internal/service"
	"fitmeal/platform/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "s3cret-pass"

type memStorage struct {
	mu      sync.Mutex
	objects map[string]int64
}

func (s *memStorage) PutObject(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	n, err := io.Copy(io.Discard, body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = n
	return err
}

func (s *memStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

func (s *memStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	auth   service.AuthService
	files  *memStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	files := &memStorage{objects: map[string]int64{}}
	log := zap.NewNop()

	auth := service.NewAuthService(store.Users(), session.NewMemoryStore(), "api-test-secret", time.Minute, time.Hour)
	mealPlans := service.NewMealPlanService(store.Users(), store.MealPlans())
	recipes := service.NewRecipeService(store.Users(), store.Recipes(), store.RecipeLinks())
	svc := Services{
		Auth:      auth,
		Users:     service.NewUserService(store.Users(), files, log),
		Trainer:   service.NewTrainerService(store.Users()),
		Overview:  service.NewOverviewService(store.Users(), store.MealPlans(), store.Assignments(), store.RecipeLinks(), store.Goals(), store.Measurements()),
		MealPlans: mealPlans,
		Progress:  service.NewProgressService(store.Users(), store.Measurements(), store.Goals()),
		Protocols: service.NewProtocolService(store.Users(), store.Templates(), store.Protocols(), store.Assignments()),
		Recipes:   recipes,
		Export:    service.NewExportService(mealPlans, recipes),
	}

	router := gin.New()
	SetupRoutes(router, svc, log, Options{RefreshTTL: time.Hour})
	return &testServer{t: t, router: router, auth: auth, files: files}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns its access token
// and id.
func (s *testServer) register(email string, role domain.Role) (token, id string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": email, "email": email, "password": testPassword, "role": role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return s.login(email), decode[UserResponse](s.t, rec).ID
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](s.t, rec).AccessToken
}

func (s *testServer) admin() string {
	s.t.Helper()
	_, err := s.auth.EnsureAdmin(context.Background(), "Admin", "admin@example.com", testPassword)
	require.NoError(s.t, err)
	return s.login("admin@example.com")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), fmt.Sprintf("body: %s", rec.Body.String()))
	return v
}
