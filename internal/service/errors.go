package service

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	// Auth
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrRoleNotAllowed       = errors.New("role cannot be self-registered")

	// Users and customers
	ErrUserNotFound            = errors.New("user not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrNotCustomer             = errors.New("user found but is not a customer")
	ErrCustomerAlreadyAssigned = errors.New("customer is already assigned to another trainer")
	ErrCustomerNotManaged      = errors.New("customer is not managed by this trainer")
	ErrAccessDenied            = errors.New("access denied")

	// Entities
	ErrMealPlanNotFound = errors.New("meal plan not found")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrProtocolNotFound = errors.New("protocol not found")
	ErrTemplateNotFound = errors.New("protocol template not found")
	ErrRecipeNotFound   = errors.New("recipe not found")

	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
