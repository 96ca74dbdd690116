package api

import (
	"fmt"
	"net/http"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ProtocolHandler struct {
	protocolService service.ProtocolService
	log             *zap.Logger
}

func NewProtocolHandler(protocolService service.ProtocolService, log *zap.Logger) *ProtocolHandler {
	return &ProtocolHandler{protocolService: protocolService, log: log}
}

// WizardRequest is the payload collected by every wizard step.
type WizardRequest struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	CustomerID     string           `json:"customerId"`
	TemplateID     string           `json:"templateId"`
	Goals          []string         `json:"goals"`
	Conditions     []string         `json:"conditions"`
	Medications    []string         `json:"medications"`
	Intensity      domain.Intensity `json:"intensity"`
	DurationDays   int              `json:"durationDays"`
	Notes          string           `json:"notes"`
	SaveAsTemplate bool             `json:"saveAsTemplate"`
}

type CreateTemplateRequest struct {
	Name                string           `json:"name" binding:"required"`
	Description         string           `json:"description"`
	TemplateType        string           `json:"templateType"`
	DefaultDurationDays int              `json:"defaultDurationDays" binding:"required"`
	DefaultIntensity    domain.Intensity `json:"defaultIntensity" binding:"required"`
	IsPublic            bool             `json:"isPublic"`
}

type AssignProtocolRequest struct {
	ProtocolID string `json:"protocolId" binding:"required"`
	Notes      string `json:"notes"`
}

// optionalObjectID parses hex when non-empty.
func optionalObjectID(hex, field string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format", field)
	}
	return &id, nil
}

// RunWizard godoc
// @Summary Complete the protocol wizard
// @Description Admins save a template. Trainers assign to a customer, or save
// @Description a template when saveAsTemplate is set.
// @Tags Protocols
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body WizardRequest true "Wizard payload"
// @Success 201 {object} service.WizardResult
// @Router /trainer/protocols/wizard [post]
// @Router /admin/protocols/wizard [post]
func (h *ProtocolHandler) RunWizard(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req WizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	customerID, err := optionalObjectID(req.CustomerID, "customerId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	templateID, err := optionalObjectID(req.TemplateID, "templateId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.protocolService.RunWizard(c.Request.Context(), actor, domain.WizardInput{
		Name:           req.Name,
		Description:    req.Description,
		CustomerID:     customerID,
		TemplateID:     templateID,
		Goals:          req.Goals,
		Conditions:     req.Conditions,
		Medications:    req.Medications,
		Intensity:      req.Intensity,
		DurationDays:   req.DurationDays,
		Notes:          req.Notes,
		SaveAsTemplate: req.SaveAsTemplate,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// WizardSteps returns the step list for the caller's role.
func (h *ProtocolHandler) WizardSteps(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	saveAsTemplate := c.Query("saveAsTemplate") == "true"
	c.JSON(http.StatusOK, gin.H{"steps": domain.WizardSteps(actor.Role, saveAsTemplate)})
}

func (h *ProtocolHandler) ListProtocols(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	protocols, err := h.protocolService.ListProtocols(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, protocols)
}

func (h *ProtocolHandler) ListTemplates(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templates, err := h.protocolService.ListTemplates(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// CreateTemplate godoc
// @Summary Create a protocol template
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTemplateRequest true "Template"
// @Success 201 {object} domain.ProtocolTemplate
// @Router /admin/protocol-templates [post]
func (h *ProtocolHandler) CreateTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	t, err := h.protocolService.CreateTemplate(c.Request.Context(), actor, service.TemplateInput{
		Name:                req.Name,
		Description:         req.Description,
		TemplateType:        req.TemplateType,
		DefaultDurationDays: req.DefaultDurationDays,
		DefaultIntensity:    req.DefaultIntensity,
		IsPublic:            req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// AssignProtocol godoc
// @Summary Assign an existing protocol to a customer
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AssignProtocolRequest true "Protocol"
// @Success 201 {object} domain.HealthProtocolAssignment
// @Router /trainer/customers/{customerId}/protocols [post]
func (h *ProtocolHandler) AssignProtocol(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := objectIDParam(c, "customerId")
	if !ok {
		return
	}
	var req AssignProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	protocolID, err := primitive.ObjectIDFromHex(req.ProtocolID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid protocolId format")
		return
	}

	a, err := h.protocolService.Assign(c.Request.Context(), actor, customerID, protocolID, req.Notes)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *ProtocolHandler) ListCustomerProtocols(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	customerID, ok := customerIDFor(c, actor)
	if !ok {
		return
	}
	list, err := h.protocolService.ListForCustomer(c.Request.Context(), actor, customerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
