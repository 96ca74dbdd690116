package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrainer  Role = "trainer"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleCustomer:
		return true
	}
	return false
}

// User represents any account in the system (admin, trainer or customer).
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`    // unique
	PasswordHash    string             `bson:"passwordHash" json:"-"` // never serialized
	Role            Role               `bson:"role" json:"role"`
	ProfileImageKey string             `bson:"profileImageKey,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	CustomerIDs []primitive.ObjectID `bson:"customerIds,omitempty" json:"customerIds,omitempty"`

	// --- Customer-specific ---
	TrainerID         *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	TrainerAssignedAt *time.Time          `bson:"trainerAssignedAt,omitempty" json:"trainerAssignedAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// IsManagedBy reports whether the customer belongs to the given trainer.
func (u *User) IsManagedBy(trainerID primitive.ObjectID) bool {
	return u.IsCustomer() && u.TrainerID != nil && *u.TrainerID == trainerID
}
