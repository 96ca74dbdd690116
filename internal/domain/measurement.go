package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressMeasurement is a point-in-time record of body metrics. Measurements
// are append-only; there is no update or delete.
type ProgressMeasurement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID     primitive.ObjectID `bson:"customerId" json:"customerId"`
	RecordedBy     primitive.ObjectID `bson:"recordedBy" json:"recordedBy"` // trainer or the customer themself
	MeasuredAt     time.Time          `bson:"measuredAt" json:"measuredAt"`
	WeightKg       *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	BodyFatPercent *float64           `bson:"bodyFatPercent,omitempty" json:"bodyFatPercent,omitempty"`
	WaistCm        *float64           `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	ChestCm        *float64           `bson:"chestCm,omitempty" json:"chestCm,omitempty"`
	HipCm          *float64           `bson:"hipCm,omitempty" json:"hipCm,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasMetrics reports whether at least one metric was recorded.
func (m *ProgressMeasurement) HasMetrics() bool {
	return m.WeightKg != nil || m.BodyFatPercent != nil || m.WaistCm != nil || m.ChestCm != nil || m.HipCm != nil
}
