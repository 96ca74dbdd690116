package service

import (
	"context"
	"errors"
	"strings"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeService serves the recipe library. Only admins see unapproved
// recipes.
type RecipeService interface {
	List(ctx context.Context, actor Actor) ([]domain.Recipe, error)
	Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Recipe, error)
	Create(ctx context.Context, actor Actor, r domain.Recipe) (*domain.Recipe, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, r domain.Recipe) (*domain.Recipe, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
	// AssignToCustomers links the recipe to every customer and reports how
	// many links are new.
	AssignToCustomers(ctx context.Context, actor Actor, recipeID primitive.ObjectID, customerIDs []primitive.ObjectID) (int, error)
	ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.Recipe, error)
}

type recipeService struct {
	userRepo       repository.UserRepository
	recipeRepo     repository.RecipeRepository
	assignmentRepo repository.RecipeAssignmentRepository
}

func NewRecipeService(userRepo repository.UserRepository, recipeRepo repository.RecipeRepository, assignmentRepo repository.RecipeAssignmentRepository) RecipeService {
	return &recipeService{userRepo: userRepo, recipeRepo: recipeRepo, assignmentRepo: assignmentRepo}
}

func (s *recipeService) List(ctx context.Context, actor Actor) ([]domain.Recipe, error) {
	return s.recipeRepo.List(ctx, !actor.IsAdmin())
}

func (s *recipeService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Recipe, error) {
	r, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrRecipeNotFound)
	}
	if !r.IsApproved && !actor.IsAdmin() {
		return nil, ErrRecipeNotFound
	}
	return r, nil
}

func validateRecipe(r *domain.Recipe) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return invalidf("recipe name is required")
	}
	if r.PrepTimeMinutes < 0 || r.CookTimeMinutes < 0 {
		return invalidf("times cannot be negative")
	}
	if r.Nutrition.Calories < 0 || r.Nutrition.ProteinGrams < 0 || r.Nutrition.CarbsGrams < 0 || r.Nutrition.FatGrams < 0 {
		return invalidf("nutrition values cannot be negative")
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return invalidf("ingredient name is required")
		}
	}
	if r.Servings <= 0 {
		r.Servings = 1
	}
	return nil
}

func (s *recipeService) Create(ctx context.Context, actor Actor, r domain.Recipe) (*domain.Recipe, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	if err := validateRecipe(&r); err != nil {
		return nil, err
	}
	r.CreatedBy = actor.ID
	if _, err := s.recipeRepo.Create(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *recipeService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, r domain.Recipe) (*domain.Recipe, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	if err := validateRecipe(&r); err != nil {
		return nil, err
	}
	r.ID = id
	if err := s.recipeRepo.Update(ctx, &r); err != nil {
		return nil, mapNotFound(err, ErrRecipeNotFound)
	}
	return s.Get(ctx, actor, id)
}

func (s *recipeService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if !actor.IsAdmin() {
		return ErrAccessDenied
	}
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrRecipeNotFound)
	}
	return s.assignmentRepo.DeleteByRecipe(ctx, id)
}

func (s *recipeService) AssignToCustomers(ctx context.Context, actor Actor, recipeID primitive.ObjectID, customerIDs []primitive.ObjectID) (int, error) {
	if !actor.IsAdmin() {
		return 0, ErrAccessDenied
	}
	if len(customerIDs) == 0 {
		return 0, invalidf("at least one customer is required")
	}
	if _, err := s.Get(ctx, actor, recipeID); err != nil {
		return 0, err
	}

	seen := make(map[primitive.ObjectID]bool, len(customerIDs))
	unique := make([]primitive.ObjectID, 0, len(customerIDs))
	for _, id := range customerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := loadCustomer(ctx, s.userRepo, actor, id); err != nil {
			if errors.Is(err, ErrCustomerNotFound) || errors.Is(err, ErrNotCustomer) {
				return 0, invalidf("%s is not a customer", id.Hex())
			}
			return 0, err
		}
		unique = append(unique, id)
	}
	return s.assignmentRepo.Assign(ctx, recipeID, actor.ID, unique)
}

func (s *recipeService) ListForCustomer(ctx context.Context, actor Actor, customerID primitive.ObjectID) ([]domain.Recipe, error) {
	if _, err := loadCustomer(ctx, s.userRepo, actor, customerID); err != nil {
		return nil, err
	}
	ids, err := s.assignmentRepo.RecipeIDsForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Recipe{}, nil
	}
	recipes, err := s.recipeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	approved := recipes[:0]
	for _, r := range recipes {
		if r.IsApproved {
			approved = append(approved, r)
		}
	}
	return approved, nil
}
