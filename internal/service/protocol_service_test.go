package service

import (
	"testing"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestProtocols(f *fixture) ProtocolService {
	return NewProtocolService(f.store.Users(), f.store.Templates(), f.store.Protocols(), f.store.Assignments())
}

func TestProtocolService_AdminWizardSavesPublicTemplate(t *testing.T) {
	f := newFixture(t)
	svc := newTestProtocols(f)
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	trainer := f.user(t, "coach@example.com", domain.RoleTrainer)

	res, err := svc.RunWizard(f.ctx, actorOf(admin), domain.WizardInput{
		Name:         "Longevity Basics",
		Goals:        []string{" sleep ", ""},
		Intensity:    domain.IntensityGentle,
		DurationDays: 30,
	})
	require.NoError(t, err)
	assert.Len(t, res.Steps, 5)
	assert.True(t, res.Protocol.IsTemplate)
	assert.Equal(t, []string{"sleep"}, res.Protocol.Goals)
	require.NotNil(t, res.Template)
	assert.True(t, res.Template.IsPublic)
	assert.Nil(t, res.Assignment)

	visible, err := svc.ListTemplates(f.ctx, actorOf(trainer))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Longevity Basics", visible[0].Name)

	customerID := primitive.NewObjectID()
	_, err = svc.RunWizard(f.ctx, actorOf(admin), domain.WizardInput{
		Name: "x", CustomerID: &customerID, Intensity: domain.IntensityGentle, DurationDays: 3,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, domain.ErrWizardCustomerForAdmin)
}

func TestProtocolService_TrainerWizardAssigns(t *testing.T) {
	f := newFixture(t)
	svc := newTestProtocols(f)
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	trainer, customer := f.managed(t)

	tmpl, err := svc.CreateTemplate(f.ctx, actorOf(admin), TemplateInput{
		Name: "Cleanse", TemplateType: "parasite_cleanse", DefaultDurationDays: 21,
		DefaultIntensity: domain.IntensityModerate, IsPublic: true,
	})
	require.NoError(t, err)

	res, err := svc.RunWizard(f.ctx, actorOf(trainer), domain.WizardInput{
		Name:       "Jane's cleanse",
		CustomerID: &customer.ID,
		TemplateID: &tmpl.ID,
		Notes:      "start monday",
	})
	require.NoError(t, err)
	assert.Len(t, res.Steps, 6)
	assert.Equal(t, domain.IntensityModerate, res.Protocol.Intensity)
	assert.Equal(t, 21, res.Protocol.DurationDays)
	require.NotNil(t, res.Assignment)
	assert.Equal(t, customer.ID, res.Assignment.CustomerID)
	assert.Nil(t, res.Template)

	assigned, err := svc.ListForCustomer(f.ctx, actorOf(customer), customer.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.NotNil(t, assigned[0].Protocol)
	assert.Equal(t, "Jane's cleanse", assigned[0].Protocol.Name)

	mine, err := svc.ListProtocols(f.ctx, actorOf(trainer))
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestProtocolService_TrainerWizardErrors(t *testing.T) {
	f := newFixture(t)
	svc := newTestProtocols(f)
	trainer, _ := f.managed(t)
	stranger := f.user(t, "lost@example.com", domain.RoleCustomer)

	_, err := svc.RunWizard(f.ctx, actorOf(trainer), domain.WizardInput{
		Name: "No customer", Intensity: domain.IntensityGentle, DurationDays: 10,
	})
	assert.ErrorIs(t, err, domain.ErrWizardCustomerMissing)

	_, err = svc.RunWizard(f.ctx, actorOf(trainer), domain.WizardInput{
		Name: "Not mine", CustomerID: &stranger.ID, Intensity: domain.IntensityGentle, DurationDays: 10,
	})
	assert.ErrorIs(t, err, ErrCustomerNotManaged)

	_, err = svc.RunWizard(f.ctx, actorOf(stranger), domain.WizardInput{Name: "x"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	res, err := svc.RunWizard(f.ctx, actorOf(trainer), domain.WizardInput{
		Name: "My template", Intensity: domain.IntensityIntensive, DurationDays: 365, SaveAsTemplate: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Steps, 5)
	require.NotNil(t, res.Template)
	assert.False(t, res.Template.IsPublic)
}

func TestProtocolService_AssignExisting(t *testing.T) {
	f := newFixture(t)
	svc := newTestProtocols(f)
	trainer, customer := f.managed(t)
	other := f.user(t, "other.coach@example.com", domain.RoleTrainer)

	res, err := svc.RunWizard(f.ctx, actorOf(other), domain.WizardInput{
		Name: "Private", Intensity: domain.IntensityGentle, DurationDays: 7, SaveAsTemplate: true,
	})
	require.NoError(t, err)

	a, err := svc.Assign(f.ctx, actorOf(trainer), customer.ID, res.Protocol.ID, "")
	require.NoError(t, err, "template protocols can be assigned by any trainer")
	assert.Equal(t, domain.AssignmentActive, a.Status)

	_, err = svc.Assign(f.ctx, actorOf(trainer), customer.ID, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrProtocolNotFound)

	_, err = svc.Assign(f.ctx, actorOf(customer), customer.ID, res.Protocol.ID, "")
	assert.ErrorIs(t, err, ErrAccessDenied)
}
