package memory

import (
	"context"
	"sort"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recipeRepo Store

func (r *recipeRepo) Create(_ context.Context, rec *domain.Recipe) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.Name == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	rec.ID = primitive.NewObjectID()
	rec.CreatedAt, rec.UpdatedAt = now(), now()
	r.recipes[rec.ID] = *rec
	return rec.ID, nil
}

func (r *recipeRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recipes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *recipeRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Recipe{}
	for _, id := range ids {
		if rec, ok := r.recipes[id]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *recipeRepo) List(_ context.Context, approvedOnly bool) ([]domain.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Recipe{}
	for _, rec := range r.recipes {
		if !approvedOnly || rec.IsApproved {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *recipeRepo) Update(_ context.Context, rec *domain.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.recipes[rec.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.CreatedBy, rec.CreatedAt = existing.CreatedBy, existing.CreatedAt
	rec.UpdatedAt = now()
	r.recipes[rec.ID] = *rec
	return nil
}

func (r *recipeRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

type recipeLinkRepo Store

func (r *recipeLinkRepo) Assign(_ context.Context, recipeID, assignedBy primitive.ObjectID, customerIDs []primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := 0
	for _, customerID := range customerIDs {
		exists := false
		for _, l := range r.recipeLinks {
			if l.RecipeID == recipeID && l.CustomerID == customerID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.recipeLinks = append(r.recipeLinks, domain.RecipeAssignment{
			ID:         primitive.NewObjectID(),
			RecipeID:   recipeID,
			CustomerID: customerID,
			AssignedBy: assignedBy,
			AssignedAt: now(),
		})
		created++
	}
	return created, nil
}

func (r *recipeLinkRepo) RecipeIDsForCustomer(_ context.Context, customerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := []primitive.ObjectID{}
	for _, l := range r.recipeLinks {
		if l.CustomerID == customerID {
			ids = append(ids, l.RecipeID)
		}
	}
	return ids, nil
}

func (r *recipeLinkRepo) DeleteByRecipe(_ context.Context, recipeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recipeLinks[:0]
	for _, l := range r.recipeLinks {
		if l.RecipeID != recipeID {
			kept = append(kept, l)
		}
	}
	r.recipeLinks = kept
	return nil
}
