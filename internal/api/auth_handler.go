package api

import (
	"fmt"
	"net/http"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService   service.AuthService
	log           *zap.Logger
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(authService service.AuthService, log *zap.Logger, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, log: log, refreshTTL: refreshTTL, secureCookies: secureCookies}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=admin trainer customer"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	CreatedAt         time.Time   `json:"createdAt"`
	CustomerIDs       []string    `json:"customerIds,omitempty"`
	TrainerID         *string     `json:"trainerId,omitempty"`
	TrainerAssignedAt *time.Time  `json:"trainerAssignedAt,omitempty"`
	ProfileImageURL   string      `json:"profileImageUrl,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	service.TokenPair
	User UserResponse `json:"user"`
}

// RefreshRequest may be empty when the token travels in the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new trainer or customer
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Role cannot self-register"
// @Failure 409 {object} gin.H "Email already exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Returns an access token and a refresh token. The refresh
// @Description token is also set as an HttpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} gin.H "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	tokens, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusOK, LoginResponse{TokenPair: *tokens, User: MapUserToResponse(user)})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Description The presented refresh token is revoked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest false "Refresh token, if not sent as cookie"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} gin.H "Unknown or expired refresh token"
// @Router /auth/refresh_token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := h.refreshTokenFromRequest(c)
	if !ok {
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		respondServiceError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusOK, tokens)
}

// Logout godoc
// @Summary Revoke the refresh token
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := h.refreshTokenFromRequest(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	h.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

// refreshTokenFromRequest prefers the JSON body over the cookie.
func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) (string, bool) {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return "", false
		}
	}
	if req.RefreshToken != "" {
		return req.RefreshToken, true
	}
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return "", true
	}
	return cookie, true
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.refreshTTL.Seconds()), refreshCookiePath, "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookies, true)
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:                user.ID.Hex(),
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		CreatedAt:         user.CreatedAt,
		TrainerAssignedAt: user.TrainerAssignedAt,
	}

	if len(user.CustomerIDs) > 0 {
		resp.CustomerIDs = make([]string, len(user.CustomerIDs))
		for i, id := range user.CustomerIDs {
			resp.CustomerIDs[i] = id.Hex()
		}
	}

	if user.TrainerID != nil && *user.TrainerID != primitive.NilObjectID {
		trainerIDHex := user.TrainerID.Hex()
		resp.TrainerID = &trainerIDHex
	}

	return resp
}

// MapUsersToResponse converts a slice of domain Users.
func MapUsersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUserToResponse(&users[i])
	}
	return out
}
