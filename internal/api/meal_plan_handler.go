package api

import (
	"fmt"
	"net/http"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MealPlanHandler struct {
	mealPlanService service.MealPlanService
	log             *zap.Logger
}

func NewMealPlanHandler(mealPlanService service.MealPlanService, log *zap.Logger) *MealPlanHandler {
	return &MealPlanHandler{mealPlanService: mealPlanService, log: log}
}

type AssignMealPlanRequest struct {
	MealPlanData domain.MealPlan `json:"mealPlanData"`
	Notes        string          `json:"notes"`
}

// AssignMealPlan godoc
// @Summary Assign a meal plan to a customer
// @Description Reassigning a plan with the same id replaces the earlier copy.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ObjectID hex"
// @Param body body AssignMealPlanRequest true "Plan"
// @Success 201 {object} domain.CustomerMealPlan
// @Router /trainer/customers/{customerId}/meal-plans [post]
func (h *MealPlanHandler) AssignMealPlan(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}
	var req AssignMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.mealPlanService.Assign(c.Request.Context(), actor, customerID, req.MealPlanData, req.Notes)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ListMealPlans serves the trainer's per-customer list and the customer's own.
func (h *MealPlanHandler) ListMealPlans(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	plans, err := h.mealPlanService.ListForCustomer(c.Request.Context(), actor, customerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// RemoveMealPlan godoc
// @Summary Remove an assigned meal plan
// @Tags Trainer
// @Security BearerAuth
// @Success 204
// @Router /trainer/customers/{customerId}/meal-plans/{planId} [delete]
func (h *MealPlanHandler) RemoveMealPlan(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	if err := h.mealPlanService.Remove(c.Request.Context(), actor, customerID, planID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
