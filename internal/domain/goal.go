package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GoalStatus string

const (
	GoalActive   GoalStatus = "active"
	GoalAchieved GoalStatus = "achieved"
	GoalPaused   GoalStatus = "paused"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalAchieved || s == GoalPaused
}

type GoalType string

const (
	GoalWeightLoss GoalType = "weight_loss"
	GoalWeightGain GoalType = "weight_gain"
	GoalBodyFat    GoalType = "body_fat"
	GoalMuscleGain GoalType = "muscle_gain"
	GoalCustom     GoalType = "custom"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalWeightLoss, GoalWeightGain, GoalBodyFat, GoalMuscleGain, GoalCustom:
		return true
	}
	return false
}

// CustomerGoal is a target metric tracked for one customer.
type CustomerGoal struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID         primitive.ObjectID `bson:"customerId" json:"customerId"`
	CreatedBy          primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	GoalType           GoalType           `bson:"goalType" json:"goalType"`
	GoalName           string             `bson:"goalName" json:"goalName"`
	Unit               string             `bson:"unit,omitempty" json:"unit,omitempty"`
	StartingValue      float64            `bson:"startingValue" json:"startingValue"`
	TargetValue        float64            `bson:"targetValue" json:"targetValue"`
	CurrentValue       float64            `bson:"currentValue" json:"currentValue"`
	ProgressPercentage float64            `bson:"progressPercentage" json:"progressPercentage"`
	Status             GoalStatus         `bson:"status" json:"status"`
	TargetDate         *time.Time         `bson:"targetDate,omitempty" json:"targetDate,omitempty"`
	AchievedAt         *time.Time         `bson:"achievedAt,omitempty" json:"achievedAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CalculateProgress returns how far current has moved from starting towards
// target, as a percentage in [0, 100]. It works for both decreasing goals
// (weight loss) and increasing ones.
func CalculateProgress(starting, target, current float64) float64 {
	total := target - starting
	if total == 0 {
		if current == target {
			return 100
		}
		return 0
	}
	return clampPercent((current - starting) / total * 100)
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Recalculate refreshes ProgressPercentage and, for active goals that reached
// their target, flips the status to achieved.
func (g *CustomerGoal) Recalculate(now time.Time) {
	g.ProgressPercentage = CalculateProgress(g.StartingValue, g.TargetValue, g.CurrentValue)
	if g.Status == GoalActive && g.ProgressPercentage >= 100 {
		g.Status = GoalAchieved
		achieved := now
		g.AchievedAt = &achieved
	}
}
