package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"
	"fitmeal/platform/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "fitmeal"

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}

// AccessClaims is the payload of an access JWT.
type AccessClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error)
	// Refresh rotates refreshToken and issues a new access token.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	// EnsureAdmin creates the admin account unless the email is taken.
	// It reports whether an account was created.
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
	ParseAccessToken(token string) (*AccessClaims, error)
}

type authService struct {
	userRepo          repository.UserRepository
	sessions          session.Store
	jwtSecret         []byte
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
	now               func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, sessions session.Store, jwtSecret string, jwtExpiration, refreshExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 15 * time.Minute
	}
	if refreshExpiration <= 0 {
		refreshExpiration = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:          userRepo,
		sessions:          sessions,
		jwtSecret:         []byte(jwtSecret),
		jwtExpiration:     jwtExpiration,
		refreshExpiration: refreshExpiration,
		now:               time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a trainer or customer account. Admins are seeded, never
// self-registered.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, invalidf("name, email and password are required")
	}
	if !role.Valid() {
		return nil, invalidf("unknown role %q", role)
	}
	if role == domain.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}
	return s.createUser(ctx, name, email, password, role)
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if !strings.Contains(email, "@") {
		return nil, invalidf("email %q is not valid", email)
	}
	if len(password) < 8 {
		return nil, invalidf("password must be at least 8 characters")
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, invalidf("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAuthenticationFailed
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrAuthenticationFailed
	}

	access, err := s.generateJWT(user)
	if err != nil {
		return nil, nil, ErrTokenGeneration
	}
	refresh, err := s.sessions.Create(ctx, user.ID.Hex(), s.refreshExpiration)
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	user.PasswordHash = ""
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.jwtExpiration.Seconds())}, user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	userID, next, err := s.sessions.Rotate(ctx, refreshToken, s.refreshExpiration)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		_ = s.sessions.Revoke(ctx, next)
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		_ = s.sessions.Revoke(ctx, next)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.generateJWT(user)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	return &TokenPair{AccessToken: access, RefreshToken: next, ExpiresIn: int64(s.jwtExpiration.Seconds())}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, refreshToken)
}

func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	_, err := s.createUser(ctx, name, email, password, domain.RoleAdmin)
	if errors.Is(err, ErrUserAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- JWT Helpers ---

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &AccessClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
