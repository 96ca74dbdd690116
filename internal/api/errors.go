package api

import (
	"errors"
	"net/http"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/logger"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
	{domain.ErrImageTypeNotAllowed, http.StatusUnsupportedMediaType},
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrNotCustomer, http.StatusBadRequest},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrRoleNotAllowed, http.StatusForbidden},
	{service.ErrAccessDenied, http.StatusForbidden},
	{service.ErrCustomerNotManaged, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrCustomerNotFound, http.StatusNotFound},
	{service.ErrMealPlanNotFound, http.StatusNotFound},
	{service.ErrGoalNotFound, http.StatusNotFound},
	{service.ErrProtocolNotFound, http.StatusNotFound},
	{service.ErrTemplateNotFound, http.StatusNotFound},
	{service.ErrRecipeNotFound, http.StatusNotFound},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrCustomerAlreadyAssigned, http.StatusConflict},
}

// respondServiceError maps a service error to a status code. Anything
// unknown is logged and reported as a 500 without details.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWithError(c, e.status, err.Error())
			return
		}
	}
	logger.FromGin(c, log).Error("unexpected service error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
