package service

import (
	"context"
	"errors"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (a Actor) IsAdmin() bool    { return a.Role == domain.RoleAdmin }
func (a Actor) IsTrainer() bool  { return a.Role == domain.RoleTrainer }
func (a Actor) IsCustomer() bool { return a.Role == domain.RoleCustomer }

// loadCustomer fetches customerID and checks the actor may see that
// customer's data: the customer themself, their trainer, or an admin.
func loadCustomer(ctx context.Context, users repository.UserRepository, actor Actor, customerID primitive.ObjectID) (*domain.User, error) {
	if customerID == primitive.NilObjectID {
		return nil, ErrCustomerNotFound
	}
	if actor.IsCustomer() && actor.ID != customerID {
		return nil, ErrAccessDenied
	}

	customer, err := users.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if !customer.IsCustomer() {
		return nil, ErrNotCustomer
	}

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleCustomer:
		return customer, nil
	case domain.RoleTrainer:
		if !customer.IsManagedBy(actor.ID) {
			return nil, ErrCustomerNotManaged
		}
		return customer, nil
	}
	return nil, ErrAccessDenied
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
