package service

import (
	"testing"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRecipes(f *fixture) RecipeService {
	return NewRecipeService(f.store.Users(), f.store.Recipes(), f.store.RecipeLinks())
}

func TestRecipeService_VisibilityByRole(t *testing.T) {
	f := newFixture(t)
	svc := newTestRecipes(f)
	admin := actorOf(f.user(t, "admin@example.com", domain.RoleAdmin))
	trainer := actorOf(f.user(t, "coach@example.com", domain.RoleTrainer))

	approved, err := svc.Create(f.ctx, admin, domain.Recipe{Name: "Oats", IsApproved: true})
	require.NoError(t, err)
	assert.Equal(t, 1, approved.Servings)
	draft, err := svc.Create(f.ctx, admin, domain.Recipe{Name: "Draft"})
	require.NoError(t, err)

	_, err = svc.Create(f.ctx, trainer, domain.Recipe{Name: "Nope"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	all, err := svc.List(f.ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	visible, err := svc.List(f.ctx, trainer)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Oats", visible[0].Name)

	_, err = svc.Get(f.ctx, trainer, draft.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	got, err := svc.Get(f.ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Name)

	draft.IsApproved = true
	updated, err := svc.Update(f.ctx, admin, draft.ID, *draft)
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)

	_, err = svc.Update(f.ctx, admin, primitive.NewObjectID(), domain.Recipe{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	_, err = svc.Create(f.ctx, admin, domain.Recipe{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecipeService_AssignToCustomers(t *testing.T) {
	f := newFixture(t)
	svc := newTestRecipes(f)
	admin := actorOf(f.user(t, "admin@example.com", domain.RoleAdmin))
	c1 := f.user(t, "a@example.com", domain.RoleCustomer)
	c2 := f.user(t, "b@example.com", domain.RoleCustomer)
	trainer := f.user(t, "coach@example.com", domain.RoleTrainer)

	recipe, err := svc.Create(f.ctx, admin, domain.Recipe{Name: "Soup", IsApproved: true})
	require.NoError(t, err)

	n, err := svc.AssignToCustomers(f.ctx, admin, recipe.ID, []primitive.ObjectID{c1.ID, c2.ID, c1.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.AssignToCustomers(f.ctx, admin, recipe.ID, []primitive.ObjectID{c1.ID})
	require.NoError(t, err)
	assert.Zero(t, n, "assignment is idempotent")

	_, err = svc.AssignToCustomers(f.ctx, admin, recipe.ID, []primitive.ObjectID{trainer.ID})
	assert.ErrorIs(t, err, ErrValidation)

	mine, err := svc.ListForCustomer(f.ctx, actorOf(c1), c1.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Soup", mine[0].Name)

	require.NoError(t, svc.Delete(f.ctx, admin, recipe.ID))
	mine, err = svc.ListForCustomer(f.ctx, actorOf(c1), c1.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.ErrorIs(t, svc.Delete(f.ctx, admin, recipe.ID), ErrRecipeNotFound)
}
