package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/logger"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const profileImageField = "image"

// maxUploadBodySize caps the whole multipart request: one image plus room
// for part headers and boundaries.
const maxUploadBodySize = domain.MaxImageSize + 64<<10

type UserHandler struct {
	userService service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// Me godoc
// @Summary Get the authenticated user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	resp := MapUserToResponse(user)
	url, err := h.userService.ProfileImageURL(c.Request.Context(), user)
	if err != nil {
		// The profile is still useful without its image.
		logger.FromGin(c, h.log).Warn("failed to presign profile image", zap.Error(err))
	}
	resp.ProfileImageURL = url
	c.JSON(http.StatusOK, resp)
}

// UploadProfileImage godoc
// @Summary Upload a profile image
// @Description JPEG, PNG or WebP up to 5 MiB, multipart field "image".
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "{imageUrl}"
// @Failure 413 {object} gin.H "Image too large"
// @Failure 415 {object} gin.H "Image type not allowed"
// @Router /profile/upload-image [post]
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if c.Request.ContentLength > maxUploadBodySize {
		abortWithError(c, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBodySize)

	header, err := c.FormFile(profileImageField)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortWithError(c, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
		return
	}
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Multipart field %q is required", profileImageField))
		return
	}
	if header.Size > domain.MaxImageSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.userService.UploadProfileImage(c.Request.Context(), actor.ID, file)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// ListUsers godoc
// @Summary List users, optionally filtered by role
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin, trainer or customer"
// @Success 200 {array} UserResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), domain.Role(c.Query("role")))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}
