package service

import (
	"context"
	"errors"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerService manages a trainer's customer roster.
type TrainerService interface {
	AddCustomerByEmail(ctx context.Context, trainerID primitive.ObjectID, customerEmail string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Customer, error)
}

type trainerService struct {
	userRepo repository.UserRepository
}

func NewTrainerService(userRepo repository.UserRepository) TrainerService {
	return &trainerService{userRepo: userRepo}
}

// AddCustomerByEmail links an existing customer account to the trainer.
// Adding a customer the trainer already manages is a no-op.
func (s *trainerService) AddCustomerByEmail(ctx context.Context, trainerID primitive.ObjectID, customerEmail string) (*domain.Customer, error) {
	customerEmail = normalizeEmail(customerEmail)
	if trainerID == primitive.NilObjectID || customerEmail == "" {
		return nil, invalidf("customer email is required")
	}

	customer, err := s.userRepo.GetByEmail(ctx, customerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if !customer.IsCustomer() {
		return nil, ErrNotCustomer
	}

	if customer.TrainerID != nil && *customer.TrainerID != primitive.NilObjectID {
		if *customer.TrainerID == trainerID {
			view := domain.NewCustomer(customer)
			return &view, nil
		}
		return nil, ErrCustomerAlreadyAssigned
	}

	if err := s.userRepo.AddCustomerToTrainer(ctx, trainerID, customer.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForCustomer(ctx, customer.ID, trainerID); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.GetByID(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	view := domain.NewCustomer(updated)
	return &view, nil
}

func (s *trainerService) ListCustomers(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Customer, error) {
	users, err := s.userRepo.GetCustomersByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(users))
	for i := range users {
		customers = append(customers, domain.NewCustomer(&users[i]))
	}
	return customers, nil
}
