package memory

import (
	"context"
	"sort"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- meal plans ---

type mealPlanRepo Store

func (r *mealPlanRepo) Assign(_ context.Context, p *domain.CustomerMealPlan) (*domain.CustomerMealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CustomerID == primitive.NilObjectID || p.TrainerID == primitive.NilObjectID || p.MealPlanData.ID == "" {
		return nil, repository.ErrInvalidRecord
	}
	saved := *p
	saved.ID = primitive.NewObjectID()
	for id, existing := range r.mealPlans {
		if existing.CustomerID == p.CustomerID && existing.MealPlanData.ID == p.MealPlanData.ID {
			saved.ID = id
			break
		}
	}
	saved.AssignedAt, saved.UpdatedAt = now(), now()
	r.mealPlans[saved.ID] = saved
	return &saved, nil
}

func (r *mealPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.CustomerMealPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.mealPlans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *mealPlanRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]domain.CustomerMealPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.CustomerMealPlan{}
	for _, p := range r.mealPlans {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (r *mealPlanRepo) Delete(_ context.Context, id, customerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.mealPlans[id]
	if !ok || p.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(r.mealPlans, id)
	return nil
}

// --- protocol templates ---

type templateRepo Store

func (r *templateRepo) Create(_ context.Context, t *domain.ProtocolTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Name == "" || t.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now(), now()
	r.templates[t.ID] = *t
	return t.ID, nil
}

func (r *templateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProtocolTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *templateRepo) ListVisible(_ context.Context, userID primitive.ObjectID) ([]domain.ProtocolTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.ProtocolTemplate{}
	for _, t := range r.templates {
		if t.IsPublic || t.CreatedBy == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- protocols ---

type protocolRepo Store

func (r *protocolRepo) Create(_ context.Context, p *domain.Protocol) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Name == "" || p.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now(), now()
	r.protocols[p.ID] = *p
	return p.ID, nil
}

func (r *protocolRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.protocols[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *protocolRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Protocol{}
	for _, id := range ids {
		if p, ok := r.protocols[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *protocolRepo) ListByCreator(_ context.Context, creatorID primitive.ObjectID) ([]domain.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Protocol{}
	for _, p := range r.protocols {
		if p.CreatedBy == creatorID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- protocol assignments ---

type assignmentRepo Store

func (r *assignmentRepo) Create(_ context.Context, a *domain.HealthProtocolAssignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ProtocolID == primitive.NilObjectID || a.CustomerID == primitive.NilObjectID || a.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	a.ID = primitive.NewObjectID()
	a.AssignedAt, a.UpdatedAt = now(), now()
	if a.Status == "" {
		a.Status = domain.AssignmentActive
	}
	r.assignments = append(r.assignments, *a)
	return a.ID, nil
}

func (r *assignmentRepo) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]domain.HealthProtocolAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.HealthProtocolAssignment{}
	for _, a := range r.assignments {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}
