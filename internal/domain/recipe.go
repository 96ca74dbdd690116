package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ingredient struct {
	Name   string `bson:"name" json:"name"`
	Amount string `bson:"amount" json:"amount"`
	Unit   string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Nutrition is per serving.
type Nutrition struct {
	Calories     int     `bson:"calories" json:"calories"`
	ProteinGrams float64 `bson:"proteinGrams" json:"proteinGrams"`
	CarbsGrams   float64 `bson:"carbsGrams" json:"carbsGrams"`
	FatGrams     float64 `bson:"fatGrams" json:"fatGrams"`
}

type Recipe struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	MealTypes       []string           `bson:"mealTypes,omitempty" json:"mealTypes,omitempty"`
	Ingredients     []Ingredient       `bson:"ingredients" json:"ingredients"`
	Instructions    string             `bson:"instructions" json:"instructions"`
	PrepTimeMinutes int                `bson:"prepTimeMinutes" json:"prepTimeMinutes"`
	CookTimeMinutes int                `bson:"cookTimeMinutes" json:"cookTimeMinutes"`
	Servings        int                `bson:"servings" json:"servings"`
	Nutrition       Nutrition          `bson:"nutrition" json:"nutrition"`
	ImageURL        string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsApproved      bool               `bson:"isApproved" json:"isApproved"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TotalTimeMinutes is prep plus cook time.
func (r *Recipe) TotalTimeMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// Summary returns the compact form embedded in meal plans.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:              r.ID.Hex(),
		Name:            r.Name,
		Calories:        r.Nutrition.Calories,
		ProteinGrams:    r.Nutrition.ProteinGrams,
		CarbsGrams:      r.Nutrition.CarbsGrams,
		FatGrams:        r.Nutrition.FatGrams,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Servings:        r.Servings,
	}
}

// RecipeSummary is the recipe snapshot stored inside a MealPlan.
type RecipeSummary struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`
	Calories        int     `bson:"calories" json:"calories"`
	ProteinGrams    float64 `bson:"proteinGrams" json:"proteinGrams"`
	CarbsGrams      float64 `bson:"carbsGrams" json:"carbsGrams"`
	FatGrams        float64 `bson:"fatGrams" json:"fatGrams"`
	PrepTimeMinutes int     `bson:"prepTimeMinutes,omitempty" json:"prepTimeMinutes,omitempty"`
	Servings        int     `bson:"servings,omitempty" json:"servings,omitempty"`
}

// RecipeAssignment links a recipe to a customer. (recipeId, customerId) is unique.
type RecipeAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipeID   primitive.ObjectID `bson:"recipeId" json:"recipeId"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	AssignedBy primitive.ObjectID `bson:"assignedBy" json:"assignedBy"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
}
