package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"john.doe@example.com":   "JD",
		"single@example.com":     "S",
		"a.b.c.d@example.com":    "ABC",
		"mary.ann.lee.smith@x.y": "MAL",
		"lower..dots@x.y":        "LD",
		"":                       "?",
		"@example.com":           "?",
	}
	for email, want := range tests {
		assert.Equal(t, want, Initials(email), email)
	}
}

func TestNewCustomer(t *testing.T) {
	assigned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{
		ID:                primitive.NewObjectID(),
		Email:             "jane.roe@example.com",
		Name:              "Jane Roe",
		Role:              RoleCustomer,
		TrainerAssignedAt: &assigned,
	}

	c := NewCustomer(u)

	assert.Equal(t, u.ID.Hex(), c.ID)
	assert.Equal(t, "JR", c.Initials)
	assert.Equal(t, assigned, c.AssignedAt)
}

func TestUser_IsManagedBy(t *testing.T) {
	trainer := primitive.NewObjectID()
	u := &User{Role: RoleCustomer, TrainerID: &trainer}

	assert.True(t, u.IsManagedBy(trainer))
	assert.False(t, u.IsManagedBy(primitive.NewObjectID()))

	u.Role = RoleTrainer
	assert.False(t, u.IsManagedBy(trainer))
}
