package service

import (
	"context"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// CustomerOverview summarizes everything assigned to and tracked for one
// customer.
type CustomerOverview struct {
	Customer          domain.Customer             `json:"customer"`
	MealPlans         int                         `json:"mealPlans"`
	ActiveProtocols   int                         `json:"activeProtocols"`
	AssignedRecipes   int                         `json:"assignedRecipes"`
	ActiveGoals       int                         `json:"activeGoals"`
	AchievedGoals     int                         `json:"achievedGoals"`
	LatestMeasurement *domain.ProgressMeasurement `json:"latestMeasurement,omitempty"`
}

type OverviewService interface {
	CustomerOverview(ctx context.Context, actor Actor, customerID primitive.ObjectID) (*CustomerOverview, error)
}

type overviewService struct {
	userRepo        repository.UserRepository
	mealPlanRepo    repository.CustomerMealPlanRepository
	assignmentRepo  repository.ProtocolAssignmentRepository
	recipeLinkRepo  repository.RecipeAssignmentRepository
	goalRepo        repository.GoalRepository
	measurementRepo repository.MeasurementRepository
}

func NewOverviewService(
	userRepo repository.UserRepository,
	mealPlanRepo repository.CustomerMealPlanRepository,
	assignmentRepo repository.ProtocolAssignmentRepository,
	recipeLinkRepo repository.RecipeAssignmentRepository,
	goalRepo repository.GoalRepository,
	measurementRepo repository.MeasurementRepository,
) OverviewService {
	return &overviewService{
		userRepo:        userRepo,
		mealPlanRepo:    mealPlanRepo,
		assignmentRepo:  assignmentRepo,
		recipeLinkRepo:  recipeLinkRepo,
		goalRepo:        goalRepo,
		measurementRepo: measurementRepo,
	}
}

// CustomerOverview loads the customer's collections concurrently; the first
// failing query cancels the rest.
func (s *overviewService) CustomerOverview(ctx context.Context, actor Actor, customerID primitive.ObjectID) (*CustomerOverview, error) {
	customer, err := loadCustomer(ctx, s.userRepo, actor, customerID)
	if err != nil {
		return nil, err
	}
	out := &CustomerOverview{Customer: domain.NewCustomer(customer)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, err := s.mealPlanRepo.ListByCustomer(gctx, customerID)
		out.MealPlans = len(plans)
		return err
	})
	g.Go(func() error {
		assignments, err := s.assignmentRepo.ListByCustomer(gctx, customerID)
		for _, a := range assignments {
			if a.Status == domain.AssignmentActive {
				out.ActiveProtocols++
			}
		}
		return err
	})
	g.Go(func() error {
		ids, err := s.recipeLinkRepo.RecipeIDsForCustomer(gctx, customerID)
		out.AssignedRecipes = len(ids)
		return err
	})
	g.Go(func() error {
		goals, err := s.goalRepo.ListByCustomer(gctx, customerID)
		for _, goal := range goals {
			switch goal.Status {
			case domain.GoalActive:
				out.ActiveGoals++
			case domain.GoalAchieved:
				out.AchievedGoals++
			}
		}
		return err
	})
	g.Go(func() error {
		measurements, err := s.measurementRepo.ListByCustomer(gctx, customerID)
		if len(measurements) > 0 {
			latest := measurements[0]
			out.LatestMeasurement = &latest
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
