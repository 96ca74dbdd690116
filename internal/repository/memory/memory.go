// Package memory holds in-process implementations of the repository
// interfaces. They back the service and API tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store bundles one instance of every repository sharing a lock.
type Store struct {
	mu sync.RWMutex

	users        map[primitive.ObjectID]domain.User
	measurements []domain.ProgressMeasurement
	goals        map[primitive.ObjectID]domain.CustomerGoal
	mealPlans    map[primitive.ObjectID]domain.CustomerMealPlan
	templates    map[primitive.ObjectID]domain.ProtocolTemplate
	protocols    map[primitive.ObjectID]domain.Protocol
	assignments  []domain.HealthProtocolAssignment
	recipes      map[primitive.ObjectID]domain.Recipe
	recipeLinks  []domain.RecipeAssignment
}

func NewStore() *Store {
	return &Store{
		users:     make(map[primitive.ObjectID]domain.User),
		goals:     make(map[primitive.ObjectID]domain.CustomerGoal),
		mealPlans: make(map[primitive.ObjectID]domain.CustomerMealPlan),
		templates: make(map[primitive.ObjectID]domain.ProtocolTemplate),
		protocols: make(map[primitive.ObjectID]domain.Protocol),
		recipes:   make(map[primitive.ObjectID]domain.Recipe),
	}
}

func (s *Store) Users() repository.UserRepository                     { return (*userRepo)(s) }
func (s *Store) Measurements() repository.MeasurementRepository       { return (*measurementRepo)(s) }
func (s *Store) Goals() repository.GoalRepository                     { return (*goalRepo)(s) }
func (s *Store) MealPlans() repository.CustomerMealPlanRepository     { return (*mealPlanRepo)(s) }
func (s *Store) Templates() repository.ProtocolTemplateRepository     { return (*templateRepo)(s) }
func (s *Store) Protocols() repository.ProtocolRepository             { return (*protocolRepo)(s) }
func (s *Store) Assignments() repository.ProtocolAssignmentRepository { return (*assignmentRepo)(s) }
func (s *Store) Recipes() repository.RecipeRepository                 { return (*recipeRepo)(s) }
func (s *Store) RecipeLinks() repository.RecipeAssignmentRepository   { return (*recipeLinkRepo)(s) }

func now() time.Time { return time.Now().UTC() }

// --- users ---

type userRepo Store

func (r *userRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Email == "" || u.PasswordHash == "" || u.Role == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now(), now()
	r.users[u.ID] = *u
	return u.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.User{}
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *userRepo) AddCustomerToTrainer(_ context.Context, trainerID, customerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.users[trainerID]
	if !ok || t.Role != domain.RoleTrainer {
		return repository.ErrNotFound
	}
	for _, id := range t.CustomerIDs {
		if id == customerID {
			return nil
		}
	}
	t.CustomerIDs = append(t.CustomerIDs, customerID)
	r.users[trainerID] = t
	return nil
}

func (r *userRepo) SetTrainerForCustomer(_ context.Context, customerID, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[customerID]
	if !ok || c.Role != domain.RoleCustomer {
		return repository.ErrNotFound
	}
	at := now()
	c.TrainerID = &trainerID
	c.TrainerAssignedAt = &at
	r.users[customerID] = c
	return nil
}

func (r *userRepo) GetCustomersByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.IsManagedBy(trainerID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *userRepo) SetProfileImageKey(_ context.Context, userID primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProfileImageKey = key
	r.users[userID] = u
	return nil
}

// --- measurements ---

type measurementRepo Store

func (r *measurementRepo) Create(_ context.Context, m *domain.ProgressMeasurement) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CustomerID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now()
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = m.CreatedAt
	}
	r.measurements = append(r.measurements, *m)
	return m.ID, nil
}

func (r *measurementRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]domain.ProgressMeasurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.ProgressMeasurement{}
	for _, m := range r.measurements {
		if m.CustomerID == customerID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeasuredAt.After(out[j].MeasuredAt) })
	return out, nil
}

// --- goals ---

type goalRepo Store

func (r *goalRepo) Create(_ context.Context, g *domain.CustomerGoal) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.CustomerID == primitive.NilObjectID || g.GoalName == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	g.ID = primitive.NewObjectID()
	g.CreatedAt, g.UpdatedAt = now(), now()
	r.goals[g.ID] = *g
	return g.ID, nil
}

func (r *goalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.CustomerGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *goalRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]domain.CustomerGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.CustomerGoal{}
	for _, g := range r.goals {
		if g.CustomerID == customerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *goalRepo) Update(_ context.Context, g *domain.CustomerGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.goals[g.ID]
	if !ok {
		return repository.ErrNotFound
	}
	g.CustomerID, g.CreatedBy, g.CreatedAt = existing.CustomerID, existing.CreatedBy, existing.CreatedAt
	g.UpdatedAt = now()
	r.goals[g.ID] = *g
	return nil
}

func (r *goalRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.goals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}
