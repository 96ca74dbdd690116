package service

import (
	"testing"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(f *fixture) AuthService {
	return NewAuthService(f.store.Users(), session.NewMemoryStore(), "test-secret", time.Minute, time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	auth := newTestAuth(f)

	u, err := auth.Register(f.ctx, "Jane", " Jane.Roe@Example.com ", "s3cret-pass", domain.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, "jane.roe@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	tokens, user, err := auth.Login(f.ctx, "jane.roe@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.EqualValues(t, 60, tokens.ExpiresIn)

	claims, err := auth.ParseAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	f := newFixture(t)
	auth := newTestAuth(f)

	_, err := auth.Register(f.ctx, "Root", "root@example.com", "s3cret-pass", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = auth.Register(f.ctx, "Short", "short@example.com", "123", domain.RoleTrainer)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.Register(f.ctx, "A", "dup@example.com", "s3cret-pass", domain.RoleTrainer)
	require.NoError(t, err)
	_, err = auth.Register(f.ctx, "B", "DUP@example.com", "s3cret-pass", domain.RoleTrainer)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	auth := newTestAuth(f)
	_, err := auth.Register(f.ctx, "Jane", "jane@example.com", "s3cret-pass", domain.RoleCustomer)
	require.NoError(t, err)

	_, _, err = auth.Login(f.ctx, "jane@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(f.ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	auth := newTestAuth(f)
	_, err := auth.Register(f.ctx, "Coach", "coach@example.com", "s3cret-pass", domain.RoleTrainer)
	require.NoError(t, err)
	first, _, err := auth.Login(f.ctx, "coach@example.com", "s3cret-pass")
	require.NoError(t, err)

	second, err := auth.Refresh(f.ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	claims, err := auth.ParseAccessToken(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, claims.Role)

	_, err = auth.Refresh(f.ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "a rotated token cannot be reused")

	require.NoError(t, auth.Logout(f.ctx, second.RefreshToken))
	_, err = auth.Refresh(f.ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ParseAccessTokenRejectsForeignSignature(t *testing.T) {
	f := newFixture(t)
	other := NewAuthService(f.store.Users(), session.NewMemoryStore(), "other-secret", time.Minute, time.Hour)
	_, err := other.Register(f.ctx, "Jane", "jane@example.com", "s3cret-pass", domain.RoleCustomer)
	require.NoError(t, err)
	tokens, _, err := other.Login(f.ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = newTestAuth(f).ParseAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = newTestAuth(f).ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	auth := newTestAuth(f)

	created, err := auth.EnsureAdmin(f.ctx, "", "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = auth.EnsureAdmin(f.ctx, "", "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := f.store.Users().GetByEmail(f.ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "Administrator", admin.Name)

	created, err = auth.EnsureAdmin(f.ctx, "x", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}
