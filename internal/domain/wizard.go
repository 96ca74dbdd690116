package domain

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WizardStep is one screen of the protocol wizard.
type WizardStep string

const (
	StepCustomer  WizardStep = "customer"
	StepTemplate  WizardStep = "template"
	StepCustomize WizardStep = "customize"
	StepIntensity WizardStep = "intensity"
	StepReview    WizardStep = "review"
	StepAssign    WizardStep = "assign"
	StepSave      WizardStep = "save"
)

var (
	ErrWizardRole                = errors.New("protocol wizard is only available to admins and trainers")
	ErrWizardCustomerMissing     = errors.New("a customer must be selected to assign the protocol")
	ErrWizardCustomerForAdmin    = errors.New("admins save protocols as templates and cannot assign them to customers")
	ErrWizardCustomerForTemplate = errors.New("a protocol saved as a template cannot be assigned to a customer")
	ErrWizardNameMissing         = errors.New("protocol name is required")
	ErrWizardIntensity           = errors.New("intensity must be one of gentle, moderate, intensive")
	ErrWizardDuration            = fmt.Errorf("duration must be between %d and %d days", MinProtocolDurationDays, MaxProtocolDurationDays)
)

// WizardSteps returns the ordered steps a user of the given role walks
// through. Admins always end by saving a template. Trainers pick a customer
// first and end by assigning, unless they save the result as a template.
func WizardSteps(role Role, saveAsTemplate bool) []WizardStep {
	switch role {
	case RoleAdmin:
		return []WizardStep{StepTemplate, StepCustomize, StepIntensity, StepReview, StepSave}
	case RoleTrainer:
		if saveAsTemplate {
			return []WizardStep{StepTemplate, StepCustomize, StepIntensity, StepReview, StepSave}
		}
		return []WizardStep{StepCustomer, StepTemplate, StepCustomize, StepIntensity, StepReview, StepAssign}
	}
	return nil
}

// WizardInput is everything collected across the wizard steps.
type WizardInput struct {
	Name           string
	Description    string
	CustomerID     *primitive.ObjectID
	TemplateID     *primitive.ObjectID
	Goals          []string
	Conditions     []string
	Medications    []string
	Intensity      Intensity
	DurationDays   int
	Notes          string
	SaveAsTemplate bool
}

// ValidateWizardInput checks the collected input against the role's flow.
// Admin input is always treated as save-as-template.
func ValidateWizardInput(role Role, in *WizardInput) error {
	steps := WizardSteps(role, in.SaveAsTemplate)
	if steps == nil {
		return ErrWizardRole
	}

	hasCustomerStep := steps[0] == StepCustomer
	switch {
	case role == RoleAdmin && in.CustomerID != nil:
		return ErrWizardCustomerForAdmin
	case in.SaveAsTemplate && in.CustomerID != nil:
		return ErrWizardCustomerForTemplate
	case hasCustomerStep && (in.CustomerID == nil || *in.CustomerID == primitive.NilObjectID):
		return ErrWizardCustomerMissing
	}

	if strings.TrimSpace(in.Name) == "" {
		return ErrWizardNameMissing
	}
	if !in.Intensity.Valid() {
		return ErrWizardIntensity
	}
	if in.DurationDays < MinProtocolDurationDays || in.DurationDays > MaxProtocolDurationDays {
		return ErrWizardDuration
	}
	return nil
}

// ApplyTemplateDefaults fills intensity and duration from the template when
// the wizard left them empty.
func (in *WizardInput) ApplyTemplateDefaults(t *ProtocolTemplate) {
	if t == nil {
		return
	}
	if in.Intensity == "" {
		in.Intensity = t.DefaultIntensity
	}
	if in.DurationDays == 0 {
		in.DurationDays = t.DefaultDurationDays
	}
}
