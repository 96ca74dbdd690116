package service

import (
	"testing"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOverviewService_CustomerOverview(t *testing.T) {
	f := newFixture(t)
	trainer, customer := f.managed(t)
	admin := actorOf(f.user(t, "admin@example.com", domain.RoleAdmin))

	plans := NewMealPlanService(f.store.Users(), f.store.MealPlans())
	progress := NewProgressService(f.store.Users(), f.store.Measurements(), f.store.Goals())
	protocols := newTestProtocols(f)
	recipes := newTestRecipes(f)
	svc := NewOverviewService(f.store.Users(), f.store.MealPlans(), f.store.Assignments(), f.store.RecipeLinks(), f.store.Goals(), f.store.Measurements())

	_, err := plans.Assign(f.ctx, actorOf(trainer), customer.ID, samplePlan("p1", "Plan"), "")
	require.NoError(t, err)
	_, err = protocols.RunWizard(f.ctx, actorOf(trainer), domain.WizardInput{
		Name: "Reset", CustomerID: &customer.ID, Intensity: domain.IntensityGentle, DurationDays: 14,
	})
	require.NoError(t, err)
	recipe, err := recipes.Create(f.ctx, admin, domain.Recipe{Name: "Salad", IsApproved: true})
	require.NoError(t, err)
	_, err = recipes.AssignToCustomers(f.ctx, admin, recipe.ID, []primitive.ObjectID{customer.ID})
	require.NoError(t, err)
	_, err = progress.CreateGoal(f.ctx, actorOf(trainer), customer.ID, GoalInput{
		GoalType: domain.GoalWeightLoss, GoalName: "Cut", StartingValue: 90, TargetValue: 80,
	})
	require.NoError(t, err)
	_, err = progress.CreateGoal(f.ctx, actorOf(trainer), customer.ID, GoalInput{
		GoalType: domain.GoalWeightLoss, GoalName: "Done", StartingValue: 90, TargetValue: 80, CurrentValue: ptr(79.0),
	})
	require.NoError(t, err)
	_, err = progress.RecordMeasurement(f.ctx, actorOf(customer), customer.ID, domain.ProgressMeasurement{WeightKg: ptr(88.0)})
	require.NoError(t, err)

	ov, err := svc.CustomerOverview(f.ctx, actorOf(customer), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "JR", ov.Customer.Initials)
	assert.Equal(t, 1, ov.MealPlans)
	assert.Equal(t, 1, ov.ActiveProtocols)
	assert.Equal(t, 1, ov.AssignedRecipes)
	assert.Equal(t, 1, ov.ActiveGoals)
	assert.Equal(t, 1, ov.AchievedGoals)
	require.NotNil(t, ov.LatestMeasurement)
	assert.Equal(t, 88.0, *ov.LatestMeasurement.WeightKg)

	stranger := f.user(t, "x@example.com", domain.RoleTrainer)
	_, err = svc.CustomerOverview(f.ctx, actorOf(stranger), customer.ID)
	assert.ErrorIs(t, err, ErrCustomerNotManaged)
}
