package repository

import (
	"context"

	"fitmeal/platform/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicate     = RepositoryError("duplicate key")
	ErrInvalidRecord = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	AddCustomerToTrainer(ctx context.Context, trainerID, customerID primitive.ObjectID) error
	SetTrainerForCustomer(ctx context.Context, customerID, trainerID primitive.ObjectID) error
	GetCustomersByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetProfileImageKey(ctx context.Context, userID primitive.ObjectID, key string) error
}

// MeasurementRepository is append-only: there is no update or delete.
type MeasurementRepository interface {
	Create(ctx context.Context, m *domain.ProgressMeasurement) (primitive.ObjectID, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.ProgressMeasurement, error)
}

type GoalRepository interface {
	Create(ctx context.Context, g *domain.CustomerGoal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomerGoal, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.CustomerGoal, error)
	Update(ctx context.Context, g *domain.CustomerGoal) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CustomerMealPlanRepository stores assigned meal plans.
type CustomerMealPlanRepository interface {
	// Assign inserts the plan, replacing an existing assignment of the same
	// MealPlanData.ID to the same customer.
	Assign(ctx context.Context, p *domain.CustomerMealPlan) (*domain.CustomerMealPlan, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomerMealPlan, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.CustomerMealPlan, error)
	Delete(ctx context.Context, id, customerID primitive.ObjectID) error
}

type ProtocolTemplateRepository interface {
	Create(ctx context.Context, t *domain.ProtocolTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProtocolTemplate, error)
	// ListVisible returns public templates plus the ones created by userID.
	ListVisible(ctx context.Context, userID primitive.ObjectID) ([]domain.ProtocolTemplate, error)
}

type ProtocolRepository interface {
	Create(ctx context.Context, p *domain.Protocol) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Protocol, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Protocol, error)
	ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Protocol, error)
}

type ProtocolAssignmentRepository interface {
	Create(ctx context.Context, a *domain.HealthProtocolAssignment) (primitive.ObjectID, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.HealthProtocolAssignment, error)
}

type RecipeRepository interface {
	Create(ctx context.Context, r *domain.Recipe) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Recipe, error)
	List(ctx context.Context, approvedOnly bool) ([]domain.Recipe, error)
	Update(ctx context.Context, r *domain.Recipe) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RecipeAssignmentRepository links recipes to customers.
type RecipeAssignmentRepository interface {
	// Assign is idempotent per (recipeID, customerID); it reports how many
	// new links were created.
	Assign(ctx context.Context, recipeID, assignedBy primitive.ObjectID, customerIDs []primitive.ObjectID) (int, error)
	RecipeIDsForCustomer(ctx context.Context, customerID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByRecipe(ctx context.Context, recipeID primitive.ObjectID) error
}
