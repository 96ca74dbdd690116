package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlan is a generated plan. Plans are versionless: reassigning a plan
// with the same ID to a customer replaces the earlier copy.
type MealPlan struct {
	ID                 string     `bson:"id" json:"id"`
	PlanName           string     `bson:"planName" json:"planName"`
	FitnessGoal        string     `bson:"fitnessGoal,omitempty" json:"fitnessGoal,omitempty"`
	Description        string     `bson:"description,omitempty" json:"description,omitempty"`
	DailyCalorieTarget int        `bson:"dailyCalorieTarget" json:"dailyCalorieTarget"`
	Days               int        `bson:"days" json:"days"`
	MealsPerDay        int        `bson:"mealsPerDay" json:"mealsPerDay"`
	Meals              []PlanMeal `bson:"meals" json:"meals"`
}

// PlanMeal places one recipe on a given day and slot of a plan.
type PlanMeal struct {
	Day        int           `bson:"day" json:"day"`
	MealNumber int           `bson:"mealNumber" json:"mealNumber"`
	MealType   string        `bson:"mealType" json:"mealType"`
	Recipe     RecipeSummary `bson:"recipe" json:"recipe"`
}

// MealsForDay returns the meals scheduled on day, in slot order as stored.
func (p *MealPlan) MealsForDay(day int) []PlanMeal {
	var out []PlanMeal
	for _, m := range p.Meals {
		if m.Day == day {
			out = append(out, m)
		}
	}
	return out
}

// AverageDailyCalories sums recipe calories over the plan and divides by Days.
func (p *MealPlan) AverageDailyCalories() int {
	if p.Days <= 0 {
		return 0
	}
	total := 0
	for _, m := range p.Meals {
		total += m.Recipe.Calories
	}
	return total / p.Days
}

// CustomerMealPlan is a meal plan assigned to a customer by a trainer.
type CustomerMealPlan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   primitive.ObjectID `bson:"customerId" json:"customerId"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	MealPlanData MealPlan           `bson:"mealPlanData" json:"mealPlanData"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedAt   time.Time          `bson:"assignedAt" json:"assignedAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
