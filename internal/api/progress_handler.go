package api

import (
	"fmt"
	"net/http"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProgressHandler serves measurements and goals. Every route exists twice:
// under /trainer/customers/:customerId and under /customer for the caller.
type ProgressHandler struct {
	progressService service.ProgressService
	log             *zap.Logger
}

func NewProgressHandler(progressService service.ProgressService, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, log: log}
}

type MeasurementRequest struct {
	MeasuredAt     *time.Time `json:"measuredAt"`
	WeightKg       *float64   `json:"weightKg"`
	BodyFatPercent *float64   `json:"bodyFatPercent"`
	WaistCm        *float64   `json:"waistCm"`
	ChestCm        *float64   `json:"chestCm"`
	HipCm          *float64   `json:"hipCm"`
	Notes          string     `json:"notes"`
}

type CreateGoalRequest struct {
	GoalType      domain.GoalType `json:"goalType" binding:"required"`
	GoalName      string          `json:"goalName" binding:"required"`
	Unit          string          `json:"unit"`
	StartingValue float64         `json:"startingValue"`
	TargetValue   float64         `json:"targetValue"`
	CurrentValue  *float64        `json:"currentValue"`
	TargetDate    *time.Time      `json:"targetDate"`
}

// UpdateGoalRequest changes only the fields present. progressPercentage is
// always derived and never accepted.
type UpdateGoalRequest struct {
	GoalName     *string            `json:"goalName"`
	TargetValue  *float64           `json:"targetValue"`
	CurrentValue *float64           `json:"currentValue"`
	Status       *domain.GoalStatus `json:"status"`
	TargetDate   *time.Time         `json:"targetDate"`
}

// RecordMeasurement godoc
// @Summary Record a progress measurement
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MeasurementRequest true "At least one metric"
// @Success 201 {object} domain.ProgressMeasurement
// @Router /trainer/customers/{customerId}/measurements [post]
// @Router /customer/measurements [post]
func (h *ProgressHandler) RecordMeasurement(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	m := domain.ProgressMeasurement{
		WeightKg:       req.WeightKg,
		BodyFatPercent: req.BodyFatPercent,
		WaistCm:        req.WaistCm,
		ChestCm:        req.ChestCm,
		HipCm:          req.HipCm,
		Notes:          req.Notes,
	}
	if req.MeasuredAt != nil {
		m.MeasuredAt = req.MeasuredAt.UTC()
	}

	saved, err := h.progressService.RecordMeasurement(c.Request.Context(), actor, customerID, m)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *ProgressHandler) ListMeasurements(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	list, err := h.progressService.ListMeasurements(c.Request.Context(), actor, customerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateGoal godoc
// @Summary Create a goal
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGoalRequest true "Goal"
// @Success 201 {object} domain.CustomerGoal
// @Router /trainer/customers/{customerId}/goals [post]
// @Router /customer/goals [post]
func (h *ProgressHandler) CreateGoal(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goal, err := h.progressService.CreateGoal(c.Request.Context(), actor, customerID, service.GoalInput{
		GoalType:      req.GoalType,
		GoalName:      req.GoalName,
		Unit:          req.Unit,
		StartingValue: req.StartingValue,
		TargetValue:   req.TargetValue,
		CurrentValue:  req.CurrentValue,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *ProgressHandler) ListGoals(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	goals, err := h.progressService.ListGoals(c.Request.Context(), actor, customerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// UpdateGoal godoc
// @Summary Update a goal; progress is recalculated
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateGoalRequest true "Fields to change"
// @Success 200 {object} domain.CustomerGoal
// @Router /trainer/customers/{customerId}/goals/{goalId} [put]
// @Router /customer/goals/{goalId} [put]
func (h *ProgressHandler) UpdateGoal(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	goalID, ok := objectIDParam(c, "goalId")
	if !ok {
		return
	}
	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	goal, err := h.progressService.UpdateGoal(c.Request.Context(), actor, customerID, goalID, service.GoalUpdate{
		GoalName:     req.GoalName,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Status:       req.Status,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *ProgressHandler) DeleteGoal(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}
	goalID, ok := objectIDParam(c, "goalId")
	if !ok {
		return
	}
	if err := h.progressService.DeleteGoal(c.Request.Context(), actor, customerID, goalID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
