package service

import (
	"context"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/pdf"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxExportRecipes = 50

// Export is a rendered PDF ready to be served as a download.
type Export struct {
	Filename string
	Document *pdf.Document
}

type ExportService interface {
	ExportMealPlan(ctx context.Context, actor Actor, mealPlanID primitive.ObjectID) (*Export, error)
	ExportRecipes(ctx context.Context, actor Actor, recipeIDs []primitive.ObjectID) (*Export, error)
}

type exportService struct {
	mealPlans MealPlanService
	recipes   RecipeService
	now       func() time.Time
}

func NewExportService(mealPlans MealPlanService, recipes RecipeService) ExportService {
	return &exportService{mealPlans: mealPlans, recipes: recipes, now: time.Now}
}

func (s *exportService) ExportMealPlan(ctx context.Context, actor Actor, mealPlanID primitive.ObjectID) (*Export, error) {
	assigned, err := s.mealPlans.Get(ctx, actor, mealPlanID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	doc, err := pdf.RenderMealPlan(&assigned.MealPlanData, now)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: pdf.MealPlanFilename(&assigned.MealPlanData, now), Document: doc}, nil
}

func (s *exportService) ExportRecipes(ctx context.Context, actor Actor, recipeIDs []primitive.ObjectID) (*Export, error) {
	if len(recipeIDs) == 0 {
		return nil, invalidf("at least one recipe is required")
	}
	if len(recipeIDs) > maxExportRecipes {
		return nil, invalidf("at most %d recipes can be exported at once", maxExportRecipes)
	}

	recipes := make([]domain.Recipe, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		r, err := s.recipes.Get(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *r)
	}

	now := s.now()
	doc, err := pdf.RenderRecipeCards("Recipes", recipes, now)
	if err != nil {
		return nil, err
	}
	return &Export{Filename: pdf.RecipesFilename(now), Document: doc}, nil
}
