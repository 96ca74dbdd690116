package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const customTemplateType = "custom"

// TemplateInput creates a protocol template directly, outside the wizard.
type TemplateInput struct {
	Name                string
	Description         string
	TemplateType        string
	DefaultDurationDays int
	DefaultIntensity    domain.Intensity
	IsPublic            bool
}

// WizardResult holds what the wizard created: always a protocol, plus either
// a template or an assignment.
type WizardResult struct {
	Steps      []domain.WizardStep              `json:"steps"`
	Protocol   *domain.Protocol                 `json:"protocol"`
	Template   *domain.ProtocolTemplate         `json:"template,omitempty"`
	Assignment *domain.HealthProtocolAssignment `json:"assignment,omitempty"`
}

// AssignedProtocol is an assignment joined with its protocol.
type AssignedProtocol struct {
	Assignment domain.HealthProtocolAssignment `json:"assignment"`
	Protocol   *domain.Protocol                `json:"protocol,omitempty"`
}

type ProtocolService interface {
	ListTemplates(ctx context.Context, actor Actor) ([]domain.ProtocolTemplate, error)
	CreateTemplate(ctx context.Context, actor Actor, in TemplateInput) (*domain.ProtocolTemplate, error)
	RunWizard(ctx context.Context, actor Actor, in domain.WizardInput) (*WizardResult, error)
	ListProtocols(ctx context.Context, actor Actor) ([]domain.Protocol, error)
	Assign(ctx context.Context, actor Actor, customerID, protocolID primitive.ObjectID, notes string) (*domain.HealthProtocolAssignment, error)
	ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]AssignedProtocol, error)
}

type protocolService struct {
	userRepo       repository.UserRepository
	templateRepo   repository.ProtocolTemplateRepository
	protocolRepo   repository.ProtocolRepository
	assignmentRepo repository.ProtocolAssignmentRepository
}

func NewProtocolService(
	userRepo repository.UserRepository,
	templateRepo repository.ProtocolTemplateRepository,
	protocolRepo repository.ProtocolRepository,
	assignmentRepo repository.ProtocolAssignmentRepository,
) ProtocolService {
	return &protocolService{
		userRepo:       userRepo,
		templateRepo:   templateRepo,
		protocolRepo:   protocolRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (s *protocolService) ListTemplates(ctx context.Context, actor Actor) ([]domain.ProtocolTemplate, error) {
	if actor.IsCustomer() {
		return nil, ErrAccessDenied
	}
	return s.templateRepo.ListVisible(ctx, actor.ID)
}

func (s *protocolService) CreateTemplate(ctx context.Context, actor Actor, in TemplateInput) (*domain.ProtocolTemplate, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidf("template name is required")
	}
	if !in.DefaultIntensity.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrWizardIntensity)
	}
	if in.DefaultDurationDays < domain.MinProtocolDurationDays || in.DefaultDurationDays > domain.MaxProtocolDurationDays {
		return nil, fmt.Errorf("%w: %w", ErrValidation, domain.ErrWizardDuration)
	}
	templateType := strings.TrimSpace(in.TemplateType)
	if templateType == "" {
		templateType = customTemplateType
	}

	t := &domain.ProtocolTemplate{
		Name:                name,
		Description:         strings.TrimSpace(in.Description),
		TemplateType:        templateType,
		DefaultDurationDays: in.DefaultDurationDays,
		DefaultIntensity:    in.DefaultIntensity,
		CreatedBy:           actor.ID,
		IsPublic:            in.IsPublic,
	}
	if _, err := s.templateRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// visibleTemplate loads a template the actor may build on.
func (s *protocolService) visibleTemplate(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.ProtocolTemplate, error) {
	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTemplateNotFound)
	}
	if !t.IsPublic && t.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// RunWizard executes the final step of the protocol wizard. Admins always
// save a template; trainers assign to a managed customer unless
// SaveAsTemplate is set.
func (s *protocolService) RunWizard(ctx context.Context, actor Actor, in domain.WizardInput) (*WizardResult, error) {
	if actor.IsAdmin() {
		in.SaveAsTemplate = true
	}

	var tmpl *domain.ProtocolTemplate
	if in.TemplateID != nil && *in.TemplateID != primitive.NilObjectID {
		t, err := s.visibleTemplate(ctx, actor, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		tmpl = t
		in.ApplyTemplateDefaults(tmpl)
	}

	if err := domain.ValidateWizardInput(actor.Role, &in); err != nil {
		if errors.Is(err, domain.ErrWizardRole) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var customerID primitive.ObjectID
	if !in.SaveAsTemplate {
		customerID = *in.CustomerID
		if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
			return nil, err
		}
	}

	protocol := &domain.Protocol{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Goals:        compact(in.Goals),
		Conditions:   compact(in.Conditions),
		Medications:  compact(in.Medications),
		Intensity:    in.Intensity,
		DurationDays: in.DurationDays,
		CreatedBy:    actor.ID,
		IsTemplate:   in.SaveAsTemplate,
	}
	if tmpl != nil {
		protocol.TemplateID = &tmpl.ID
	}
	if _, err := s.protocolRepo.Create(ctx, protocol); err != nil {
		return nil, err
	}

	result := &WizardResult{
		Steps:    domain.WizardSteps(actor.Role, in.SaveAsTemplate),
		Protocol: protocol,
	}

	if in.SaveAsTemplate {
		templateType := customTemplateType
		if tmpl != nil {
			templateType = tmpl.TemplateType
		}
		saved := &domain.ProtocolTemplate{
			Name:                protocol.Name,
			Description:         protocol.Description,
			TemplateType:        templateType,
			DefaultDurationDays: protocol.DurationDays,
			DefaultIntensity:    protocol.Intensity,
			CreatedBy:           actor.ID,
			IsPublic:            actor.IsAdmin(),
		}
		if _, err := s.templateRepo.Create(ctx, saved); err != nil {
			return nil, err
		}
		result.Template = saved
		return result, nil
	}

	assignment := &domain.HealthProtocolAssignment{
		ProtocolID: protocol.ID,
		CustomerID: customerID,
		TrainerID:  actor.ID,
		Status:     domain.AssignmentActive,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	result.Assignment = assignment
	return result, nil
}

func (s *protocolService) ListProtocols(ctx context.Context, actor Actor) ([]domain.Protocol, error) {
	if actor.IsCustomer() {
		return nil, ErrAccessDenied
	}
	return s.protocolRepo.ListByCreator(ctx, actor.ID)
}

// Assign gives an existing protocol to a managed customer. The trainer must
// own the protocol, or it must be a template protocol.
func (s *protocolService) Assign(ctx context.Context, actor Actor, customerID, protocolID primitive.ObjectID, notes string) (*domain.HealthProtocolAssignment, error) {
	if !actor.IsTrainer() {
		return nil, ErrAccessDenied
	}
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	protocol, err := s.protocolRepo.GetByID(ctx, protocolID)
	if err != nil {
		return nil, mapNotFound(err, ErrProtocolNotFound)
	}
	if protocol.CreatedBy != actor.ID && !protocol.IsTemplate {
		return nil, ErrProtocolNotFound
	}

	assignment := &domain.HealthProtocolAssignment{
		ProtocolID: protocol.ID,
		CustomerID: customerID,
		TrainerID:  actor.ID,
		Status:     domain.AssignmentActive,
		Notes:      strings.TrimSpace(notes),
	}
	if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *protocolService) ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]AssignedProtocol, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []AssignedProtocol{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ProtocolID)
	}
	protocols, err := s.protocolRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*domain.Protocol, len(protocols))
	for i := range protocols {
		byID[protocols[i].ID] = &protocols[i]
	}

	out := make([]AssignedProtocol, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignedProtocol{Assignment: a, Protocol: byID[a.ProtocolID]})
	}
	return out, nil
}

// compact trims entries and drops empty ones.
func compact(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
