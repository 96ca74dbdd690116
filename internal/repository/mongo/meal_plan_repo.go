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

const mealPlanCollectionName = "customer_meal_plans"

type mongoCustomerMealPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerMealPlanRepository creates a CustomerMealPlanRepository backed by MongoDB.
func NewMongoCustomerMealPlanRepository(db *mongo.Database) repository.CustomerMealPlanRepository {
	return &mongoCustomerMealPlanRepository{collection: db.Collection(mealPlanCollectionName)}
}

// Assign upserts on (customerId, mealPlanData.id) so a reassigned plan
// replaces the previous copy instead of accumulating versions. On insert the
// customerId comes from the filter.
func (r *mongoCustomerMealPlanRepository) Assign(ctx context.Context, p *domain.CustomerMealPlan) (*domain.CustomerMealPlan, error) {
	if p.CustomerID == primitive.NilObjectID || p.TrainerID == primitive.NilObjectID || p.MealPlanData.ID == "" {
		return nil, repository.ErrInvalidRecord
	}
	now := time.Now().UTC()
	filter := bson.M{"customerId": p.CustomerID, "mealPlanData.id": p.MealPlanData.ID}
	update := bson.M{
		"$set": bson.M{
			"trainerId":    p.TrainerID,
			"mealPlanData": p.MealPlanData,
			"notes":        p.Notes,
			"assignedAt":   now,
			"updatedAt":    now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.CustomerMealPlan
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *mongoCustomerMealPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomerMealPlan, error) {
	var p domain.CustomerMealPlan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByCustomer returns the customer's plans, most recently assigned first.
func (r *mongoCustomerMealPlanRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.CustomerMealPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	return findAll[domain.CustomerMealPlan](ctx, r.collection, bson.M{"customerId": customerID}, opts)
}

// Delete removes an assignment; the customerId filter stops cross-customer deletes.
func (r *mongoCustomerMealPlanRepository) Delete(ctx context.Context, id, customerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "customerId": customerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureMealPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "mealPlanData.id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
