package service

import (
	"context"
	"strings"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MealPlanService interface {
	// Assign stores plan for the customer, replacing an earlier assignment
	// of the same plan ID.
	Assign(ctx context.Context, actor Actor, customerID primitive.ObjectID, plan domain.MealPlan, notes string) (*domain.CustomerMealPlan, error)
	ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.CustomerMealPlan, error)
	Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.CustomerMealPlan, error)
	Remove(ctx context.Context, actor Actor, customerID, id primitive.ObjectID) error
}

type mealPlanService struct {
	userRepo     repository.UserRepository
	mealPlanRepo repository.CustomerMealPlanRepository
}

func NewMealPlanService(userRepo repository.UserRepository, mealPlanRepo repository.CustomerMealPlanRepository) MealPlanService {
	return &mealPlanService{userRepo: userRepo, mealPlanRepo: mealPlanRepo}
}

func validateMealPlan(p *domain.MealPlan) error {
	p.ID = strings.TrimSpace(p.ID)
	p.PlanName = strings.TrimSpace(p.PlanName)
	switch {
	case p.ID == "":
		return invalidf("meal plan id is required")
	case p.PlanName == "":
		return invalidf("meal plan name is required")
	case p.Days < 1:
		return invalidf("meal plan must cover at least one day")
	}
	for _, m := range p.Meals {
		if m.Day < 1 || m.Day > p.Days {
			return invalidf("meal on day %d is outside the plan's %d days", m.Day, p.Days)
		}
	}
	return nil
}

func (s *mealPlanService) Assign(ctx context.Context, actor Actor, customerID primitive.ObjectID, plan domain.MealPlan, notes string) (*domain.CustomerMealPlan, error) {
	if !actor.IsTrainer() {
		return nil, ErrAccessDenied
	}
	if err := validateMealPlan(&plan); err != nil {
		return nil, err
	}
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}

	return s.mealPlanRepo.Assign(ctx, &domain.CustomerMealPlan{
		CustomerID:   customerID,
		TrainerID:    actor.ID,
		MealPlanData: plan,
		Notes:        strings.TrimSpace(notes),
	})
}

func (s *mealPlanService) ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.CustomerMealPlan, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	return s.mealPlanRepo.ListByCustomer(ctx, customerID)
}

func (s *mealPlanService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.CustomerMealPlan, error) {
	plan, err := s.mealPlanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrMealPlanNotFound)
	}
	if _, err := loadCustomer(ctx, s.userRepo, actor, plan.CustomerID); err != nil {
		// Do not reveal plans of other customers.
		return nil, ErrMealPlanNotFound
	}
	return plan, nil
}

func (s *mealPlanService) Remove(ctx context.Context, actor Actor, customerID, id primitive.ObjectID) error {
	if actor.IsCustomer() {
		return ErrAccessDenied
	}
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return err
	}
	return mapNotFound(s.mealPlanRepo.Delete(ctx, id, customerID), ErrMealPlanNotFound)
}
