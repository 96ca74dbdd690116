package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Intensity string

const (
	IntensityGentle    Intensity = "gentle"
	IntensityModerate  Intensity = "moderate"
	IntensityIntensive Intensity = "intensive"
)

func (i Intensity) Valid() bool {
	return i == IntensityGentle || i == IntensityModerate || i == IntensityIntensive
}

const (
	MinProtocolDurationDays = 1
	MaxProtocolDurationDays = 365
)

// ProtocolTemplate is a reusable starting point for the protocol wizard.
type ProtocolTemplate struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	TemplateType        string             `bson:"templateType" json:"templateType"` // e.g. "longevity", "parasite_cleanse"
	DefaultDurationDays int                `bson:"defaultDurationDays" json:"defaultDurationDays"`
	DefaultIntensity    Intensity          `bson:"defaultIntensity" json:"defaultIntensity"`
	CreatedBy           primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	IsPublic            bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Protocol is a health program customized from a template via the wizard.
type Protocol struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	TemplateID   *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Goals        []string            `bson:"goals,omitempty" json:"goals,omitempty"`
	Conditions   []string            `bson:"conditions,omitempty" json:"conditions,omitempty"`
	Medications  []string            `bson:"medications,omitempty" json:"medications,omitempty"`
	Intensity    Intensity           `bson:"intensity" json:"intensity"`
	DurationDays int                 `bson:"durationDays" json:"durationDays"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	IsTemplate   bool                `bson:"isTemplate" json:"isTemplate"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentPaused    AssignmentStatus = "paused"
)

// HealthProtocolAssignment assigns a protocol to a customer.
type HealthProtocolAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProtocolID primitive.ObjectID `bson:"protocolId" json:"protocolId"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	TrainerID  primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Status     AssignmentStatus   `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
