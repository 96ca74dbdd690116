package service

import (
	"bytes"
	"testing"
	"time"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestExport(f *fixture) (ExportService, MealPlanService, RecipeService) {
	plans := NewMealPlanService(f.store.Users(), f.store.MealPlans())
	recipes := newTestRecipes(f)
	svc := NewExportService(plans, recipes).(*exportService)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return svc, plans, recipes
}

func TestExportService_MealPlan(t *testing.T) {
	f := newFixture(t)
	svc, plans, _ := newTestExport(f)
	trainer, customer := f.managed(t)
	outsider := f.user(t, "out@example.com", domain.RoleCustomer)

	assigned, err := plans.Assign(f.ctx, actorOf(trainer), customer.ID, samplePlan("p1", "Lean & Green"), "")
	require.NoError(t, err)

	out, err := svc.ExportMealPlan(f.ctx, actorOf(customer), assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, "meal-plan-lean-green-20261018.pdf", out.Filename)
	assert.True(t, bytes.HasPrefix(out.Document.Data, []byte("%PDF-")))

	_, err = svc.ExportMealPlan(f.ctx, actorOf(outsider), assigned.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}

func TestExportService_Recipes(t *testing.T) {
	f := newFixture(t)
	svc, _, recipes := newTestExport(f)
	admin := actorOf(f.user(t, "admin@example.com", domain.RoleAdmin))
	customer := actorOf(f.user(t, "c@example.com", domain.RoleCustomer))

	soup, err := recipes.Create(f.ctx, admin, domain.Recipe{Name: "Soup", IsApproved: true})
	require.NoError(t, err)
	draft, err := recipes.Create(f.ctx, admin, domain.Recipe{Name: "Draft"})
	require.NoError(t, err)

	out, err := svc.ExportRecipes(f.ctx, customer, []primitive.ObjectID{soup.ID})
	require.NoError(t, err)
	assert.Equal(t, "recipes-20261018.pdf", out.Filename)
	assert.Equal(t, 1, out.Document.Pages)

	_, err = svc.ExportRecipes(f.ctx, customer, []primitive.ObjectID{soup.ID, draft.ID})
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.ExportRecipes(f.ctx, customer, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
