package mongo

import (
	"context"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const measurementCollectionName = "progress_measurements"

type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

// NewMongoMeasurementRepository creates a MeasurementRepository backed by MongoDB.
func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{collection: db.Collection(measurementCollectionName)}
}

// Create appends a measurement. MeasuredAt defaults to now.
func (r *mongoMeasurementRepository) Create(ctx context.Context, m *domain.ProgressMeasurement) (primitive.ObjectID, error) {
	if m.CustomerID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = now
	}

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// ListByCustomer returns the customer's measurement history, newest first.
func (r *mongoMeasurementRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.ProgressMeasurement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "measuredAt", Value: -1}})
	return findAll[domain.ProgressMeasurement](ctx, r.collection, bson.M{"customerId": customerID}, opts)
}

func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "measuredAt", Value: -1}},
	})
	return err
}
