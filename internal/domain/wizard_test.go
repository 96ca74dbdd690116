package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWizardSteps(t *testing.T) {
	assert.Len(t, WizardSteps(RoleAdmin, false), 5)
	assert.Len(t, WizardSteps(RoleAdmin, true), 5)
	assert.Equal(t, StepSave, WizardSteps(RoleAdmin, false)[4])

	trainer := WizardSteps(RoleTrainer, false)
	assert.Len(t, trainer, 6)
	assert.Equal(t, StepCustomer, trainer[0])
	assert.Equal(t, StepAssign, trainer[5])

	assert.Len(t, WizardSteps(RoleTrainer, true), 5)
	assert.Nil(t, WizardSteps(RoleCustomer, false))
}

func validInput() *WizardInput {
	return &WizardInput{Name: "Longevity", Intensity: IntensityModerate, DurationDays: 30}
}

func TestValidateWizardInput(t *testing.T) {
	customer := primitive.NewObjectID()

	in := validInput()
	assert.NoError(t, ValidateWizardInput(RoleAdmin, in))

	in.CustomerID = &customer
	assert.ErrorIs(t, ValidateWizardInput(RoleAdmin, in), ErrWizardCustomerForAdmin)
	assert.NoError(t, ValidateWizardInput(RoleTrainer, in))

	in = validInput()
	assert.ErrorIs(t, ValidateWizardInput(RoleTrainer, in), ErrWizardCustomerMissing)
	in.SaveAsTemplate = true
	assert.NoError(t, ValidateWizardInput(RoleTrainer, in))
	in.CustomerID = &customer
	assert.ErrorIs(t, ValidateWizardInput(RoleTrainer, in), ErrWizardCustomerForTemplate)

	in = validInput()
	in.Name = "  "
	assert.ErrorIs(t, ValidateWizardInput(RoleAdmin, in), ErrWizardNameMissing)

	in = validInput()
	in.Intensity = "extreme"
	assert.ErrorIs(t, ValidateWizardInput(RoleAdmin, in), ErrWizardIntensity)

	in = validInput()
	in.DurationDays = 366
	assert.ErrorIs(t, ValidateWizardInput(RoleAdmin, in), ErrWizardDuration)

	assert.ErrorIs(t, ValidateWizardInput(RoleCustomer, validInput()), ErrWizardRole)
}

func TestApplyTemplateDefaults(t *testing.T) {
	in := &WizardInput{Name: "x"}
	in.ApplyTemplateDefaults(&ProtocolTemplate{DefaultIntensity: IntensityGentle, DefaultDurationDays: 14})
	assert.Equal(t, IntensityGentle, in.Intensity)
	assert.Equal(t, 14, in.DurationDays)

	in.ApplyTemplateDefaults(&ProtocolTemplate{DefaultIntensity: IntensityIntensive, DefaultDurationDays: 90})
	assert.Equal(t, IntensityGentle, in.Intensity, "explicit values win")
}
