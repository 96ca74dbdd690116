package service

import (
	"context"
	"strings"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalInput creates a goal. CurrentValue defaults to StartingValue.
type GoalInput struct {
	GoalType      domain.GoalType
	GoalName      string
	Unit          string
	StartingValue float64
	TargetValue   float64
	CurrentValue  *float64
	TargetDate    *time.Time
}

// GoalUpdate changes the non-nil fields of a goal. Customers may only move
// CurrentValue.
type GoalUpdate struct {
	GoalName     *string
	TargetValue  *float64
	CurrentValue *float64
	Status       *domain.GoalStatus
	TargetDate   *time.Time
}

func (u GoalUpdate) onlyCurrentValue() bool {
	return u.GoalName == nil && u.TargetValue == nil && u.Status == nil && u.TargetDate == nil
}

// ProgressService records measurements and tracks goals for a customer.
type ProgressService interface {
	RecordMeasurement(ctx context.Context, actor Actor, customerID primitive.ObjectID, m domain.ProgressMeasurement) (*domain.ProgressMeasurement, error)
	ListMeasurements(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.ProgressMeasurement, error)
	CreateGoal(ctx context.Context, actor Actor, customerID primitive.ObjectID, in GoalInput) (*domain.CustomerGoal, error)
	ListGoals(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.CustomerGoal, error)
	UpdateGoal(ctx context.Context, actor Actor, customerID, goalID primitive.ObjectID, upd GoalUpdate) (*domain.CustomerGoal, error)
	DeleteGoal(ctx context.Context, actor Actor, customerID, goalID primitive.ObjectID) error
}

type progressService struct {
	userRepo        repository.UserRepository
	measurementRepo repository.MeasurementRepository
	goalRepo        repository.GoalRepository
	now             func() time.Time
}

func NewProgressService(userRepo repository.UserRepository, measurementRepo repository.MeasurementRepository, goalRepo repository.GoalRepository) ProgressService {
	return &progressService{
		userRepo:        userRepo,
		measurementRepo: measurementRepo,
		goalRepo:        goalRepo,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// === Measurements ===

func (s *progressService) RecordMeasurement(ctx context.Context, actor Actor, customerID primitive.ObjectID, m domain.ProgressMeasurement) (*domain.ProgressMeasurement, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	if !m.HasMetrics() {
		return nil, invalidf("at least one metric is required")
	}
	for _, v := range []*float64{m.WeightKg, m.BodyFatPercent, m.WaistCm, m.ChestCm, m.HipCm} {
		if v != nil && *v <= 0 {
			return nil, invalidf("metrics must be positive")
		}
	}
	if m.BodyFatPercent != nil && *m.BodyFatPercent >= 100 {
		return nil, invalidf("body fat percentage must be below 100")
	}

	m.ID = primitive.NilObjectID
	m.CustomerID = customerID
	m.RecordedBy = actor.ID
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = s.now()
	}
	if _, err := s.measurementRepo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *progressService) ListMeasurements(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.ProgressMeasurement, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	return s.measurementRepo.ListByCustomer(ctx, customerID)
}

// === Goals ===

func (s *progressService) CreateGoal(ctx context.Context, actor Actor, customerID primitive.ObjectID, in GoalInput) (*domain.CustomerGoal, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.GoalName)
	if name == "" {
		return nil, invalidf("goal name is required")
	}
	if !in.GoalType.Valid() {
		return nil, invalidf("unknown goal type %q", in.GoalType)
	}

	current := in.StartingValue
	if in.CurrentValue != nil {
		current = *in.CurrentValue
	}
	goal := &domain.CustomerGoal{
		CustomerID:    customerID,
		CreatedBy:     actor.ID,
		GoalType:      in.GoalType,
		GoalName:      name,
		Unit:          strings.TrimSpace(in.Unit),
		StartingValue: in.StartingValue,
		TargetValue:   in.TargetValue,
		CurrentValue:  current,
		Status:        domain.GoalActive,
		TargetDate:    in.TargetDate,
	}
	goal.Recalculate(s.now())

	if _, err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *progressService) ListGoals(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.CustomerGoal, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	return s.goalRepo.ListByCustomer(ctx, customerID)
}

func (s *progressService) loadGoal(ctx context.Context, actor Actor, customerID, goalID primitive.ObjectID) (*domain.CustomerGoal, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, mapNotFound(err, ErrGoalNotFound)
	}
	if goal.CustomerID != customerID {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (s *progressService) UpdateGoal(ctx context.Context, actor Actor, customerID, goalID primitive.ObjectID, upd GoalUpdate) (*domain.CustomerGoal, error) {
	if actor.IsCustomer() && !upd.onlyCurrentValue() {
		return nil, ErrAccessDenied
	}
	goal, err := s.loadGoal(ctx, actor, customerID, goalID)
	if err != nil {
		return nil, err
	}

	if upd.GoalName != nil {
		name := strings.TrimSpace(*upd.GoalName)
		if name == "" {
			return nil, invalidf("goal name is required")
		}
		goal.GoalName = name
	}
	if upd.TargetValue != nil {
		goal.TargetValue = *upd.TargetValue
	}
	if upd.CurrentValue != nil {
		goal.CurrentValue = *upd.CurrentValue
	}
	if upd.TargetDate != nil {
		goal.TargetDate = upd.TargetDate
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, invalidf("unknown goal status %q", *upd.Status)
		}
		goal.Status = *upd.Status
		switch goal.Status {
		case domain.GoalAchieved:
			if goal.AchievedAt == nil {
				at := s.now()
				goal.AchievedAt = &at
			}
		default:
			goal.AchievedAt = nil
		}
	}
	goal.Recalculate(s.now())

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, mapNotFound(err, ErrGoalNotFound)
	}
	return goal, nil
}

func (s *progressService) DeleteGoal(ctx context.Context, actor Actor, customerID, goalID primitive.ObjectID) error {
	if actor.IsCustomer() {
		return ErrAccessDenied
	}
	if _, err := s.loadGoal(ctx, actor, customerID, goalID); err != nil {
		return err
	}
	return mapNotFound(s.goalRepo.Delete(ctx, goalID), ErrGoalNotFound)
}
