package api

import (
	"fmt"
	"net/http"

	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TrainerHandler serves the trainer's roster and customer overviews.
type TrainerHandler struct {
	trainerService  service.TrainerService
	overviewService service.OverviewService
	log             *zap.Logger
}

func NewTrainerHandler(trainerService service.TrainerService, overviewService service.OverviewService, log *zap.Logger) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService, overviewService: overviewService, log: log}
}

type AddCustomerRequest struct {
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
}

// AddCustomerByEmail godoc
// @Summary Add an existing customer to the trainer's roster
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddCustomerRequest true "Customer email"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} gin.H "Customer not found"
// @Failure 409 {object} gin.H "Customer belongs to another trainer"
// @Router /trainer/customers [post]
func (h *TrainerHandler) AddCustomerByEmail(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req AddCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	customer, err := h.trainerService.AddCustomerByEmail(c.Request.Context(), actor.ID, req.CustomerEmail)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// ListCustomers godoc
// @Summary List the trainer's customers
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Customer
// @Router /trainer/customers [get]
func (h *TrainerHandler) ListCustomers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customers, err := h.trainerService.ListCustomers(c.Request.Context(), actor.ID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// CustomerOverview serves both /trainer/customers/:customerId/overview and
// /customer/overview.
func (h *TrainerHandler) CustomerOverview(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	overview, err := h.overviewService.CustomerOverview(c.Request.Context(), actor, customerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
