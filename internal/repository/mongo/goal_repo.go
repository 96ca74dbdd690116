package mongo

import (
	"context"
	"errors"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const goalCollectionName = "customer_goals"

type mongoGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalRepository creates a GoalRepository backed by MongoDB.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{collection: db.Collection(goalCollectionName)}
}

func (r *mongoGoalRepository) Create(ctx context.Context, g *domain.CustomerGoal) (primitive.ObjectID, error) {
	if g.CustomerID == primitive.NilObjectID || g.GoalName == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	g.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, g)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomerGoal, error) {
	var g domain.CustomerGoal
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByCustomer returns active goals first, then by creation date.
func (r *mongoGoalRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.CustomerGoal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}})
	return findAll[domain.CustomerGoal](ctx, r.collection, bson.M{"customerId": customerID}, opts)
}

// Update writes the mutable goal fields. Owner and creation time never change.
func (r *mongoGoalRepository) Update(ctx context.Context, g *domain.CustomerGoal) error {
	if g.ID == primitive.NilObjectID {
		return repository.ErrInvalidRecord
	}
	g.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"goalType":           g.GoalType,
			"goalName":           g.GoalName,
			"unit":               g.Unit,
			"startingValue":      g.StartingValue,
			"targetValue":        g.TargetValue,
			"currentValue":       g.CurrentValue,
			"progressPercentage": g.ProgressPercentage,
			"status":             g.Status,
			"targetDate":         g.TargetDate,
			"achievedAt":         g.AchievedAt,
			"updatedAt":          g.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": g.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoGoalRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "status", Value: 1}},
	})
	return err
}
