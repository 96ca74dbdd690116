package service

import (
	"testing"

	"fitmeal/platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainerService_AddCustomerByEmail(t *testing.T) {
	f := newFixture(t)
	svc := NewTrainerService(f.store.Users())
	trainer := f.user(t, "coach@example.com", domain.RoleTrainer)
	customer := f.user(t, "john.doe@example.com", domain.RoleCustomer)

	view, err := svc.AddCustomerByEmail(f.ctx, trainer.ID, "John.Doe@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID.Hex(), view.ID)
	assert.Equal(t, "JD", view.Initials)
	assert.False(t, view.AssignedAt.IsZero())

	again, err := svc.AddCustomerByEmail(f.ctx, trainer.ID, "john.doe@example.com")
	require.NoError(t, err, "re-adding a managed customer is a no-op")
	assert.Equal(t, view.ID, again.ID)

	list, err := svc.ListCustomers(f.ctx, trainer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "john.doe@example.com", list[0].Email)
}

func TestTrainerService_AddCustomerByEmailErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewTrainerService(f.store.Users())
	trainer, _ := f.managed(t)
	other := f.user(t, "other.coach@example.com", domain.RoleTrainer)

	_, err := svc.AddCustomerByEmail(f.ctx, other.ID, "jane.roe@example.com")
	assert.ErrorIs(t, err, ErrCustomerAlreadyAssigned)

	_, err = svc.AddCustomerByEmail(f.ctx, trainer.ID, "other.coach@example.com")
	assert.ErrorIs(t, err, ErrNotCustomer)

	_, err = svc.AddCustomerByEmail(f.ctx, trainer.ID, "ghost@example.com")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = svc.AddCustomerByEmail(f.ctx, trainer.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
}
