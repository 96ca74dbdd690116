package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fitmeal/platform/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestAuth_RegisterRejectsAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Root", "email": "root@example.com", "password": testPassword, "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Bad", "email": "not-an-email", "password": testPassword, "role": "customer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.register("jane@example.com", domain.RoleCustomer)
	rec = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Jane", "email": "jane@example.com", "password": testPassword, "role": "customer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuth_LoginRefreshLogout(t *testing.T) {
	s := newTestServer(t)
	s.register("coach@example.com", domain.RoleTrainer)

	rec := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "coach@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "coach@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[LoginResponse](t, rec)
	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, login.RefreshToken, cookie.Value)
	assert.Equal(t, domain.RoleTrainer, login.User.Role)

	// Refresh through the cookie alone.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh_token", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refreshed := decode[LoginResponse](t, rec)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated token is dead.
	rec = s.do(http.MethodPost, "/api/auth/refresh_token", "", gin.H{"refreshToken": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/me", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coach@example.com", decode[UserResponse](t, rec).Email)

	rec = s.do(http.MethodPost, "/api/auth/logout", "", gin.H{"refreshToken": refreshed.RefreshToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodPost, "/api/auth/refresh_token", "", gin.H{"refreshToken": refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRoleMiddleware(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.register("jane@example.com", domain.RoleCustomer)
	trainer, _ := s.register("coach@example.com", domain.RoleTrainer)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/trainer/customers", customer, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/users", trainer, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/customer/goals", trainer, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/trainer/customers", trainer, nil).Code)

	admin := s.admin()
	rec := s.do(http.MethodGet, "/api/admin/users?role=customer", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserResponse](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, "jane@example.com", users[0].Email)
}
