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

const (
	protocolTemplateCollectionName   = "protocol_templates"
	protocolCollectionName           = "protocols"
	protocolAssignmentCollectionName = "protocol_assignments"
)

// --- Templates ---

type mongoProtocolTemplateRepository struct {
	collection *mongo.Collection
}

func NewMongoProtocolTemplateRepository(db *mongo.Database) repository.ProtocolTemplateRepository {
	return &mongoProtocolTemplateRepository{collection: db.Collection(protocolTemplateCollectionName)}
}

func (r *mongoProtocolTemplateRepository) Create(ctx context.Context, t *domain.ProtocolTemplate) (primitive.ObjectID, error) {
	if t.Name == "" || t.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	t.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, t)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoProtocolTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProtocolTemplate, error) {
	var t domain.ProtocolTemplate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *mongoProtocolTemplateRepository) ListVisible(ctx context.Context, userID primitive.ObjectID) ([]domain.ProtocolTemplate, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"isPublic": true},
		bson.M{"createdBy": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[domain.ProtocolTemplate](ctx, r.collection, filter, opts)
}

// --- Protocols ---

type mongoProtocolRepository struct {
	collection *mongo.Collection
}

func NewMongoProtocolRepository(db *mongo.Database) repository.ProtocolRepository {
	return &mongoProtocolRepository{collection: db.Collection(protocolCollectionName)}
}

func (r *mongoProtocolRepository) Create(ctx context.Context, p *domain.Protocol) (primitive.ObjectID, error) {
	if p.Name == "" || p.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoProtocolRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Protocol, error) {
	var p domain.Protocol
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *mongoProtocolRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Protocol, error) {
	if len(ids) == 0 {
		return []domain.Protocol{}, nil
	}
	return findAll[domain.Protocol](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoProtocolRepository) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Protocol, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[domain.Protocol](ctx, r.collection, bson.M{"createdBy": creatorID}, opts)
}

// --- Assignments ---

type mongoProtocolAssignmentRepository struct {
	collection *mongo.Collection
}

func NewMongoProtocolAssignmentRepository(db *mongo.Database) repository.ProtocolAssignmentRepository {
	return &mongoProtocolAssignmentRepository{collection: db.Collection(protocolAssignmentCollectionName)}
}

func (r *mongoProtocolAssignmentRepository) Create(ctx context.Context, a *domain.HealthProtocolAssignment) (primitive.ObjectID, error) {
	if a.ProtocolID == primitive.NilObjectID || a.CustomerID == primitive.NilObjectID || a.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.AssignedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = domain.AssignmentActive
	}

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoProtocolAssignmentRepository) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.HealthProtocolAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	return findAll[domain.HealthProtocolAssignment](ctx, r.collection, bson.M{"customerId": customerID}, opts)
}

// EnsureProtocolIndexes covers templates, protocols and assignments.
func EnsureProtocolIndexes(ctx context.Context, db *mongo.Database) error {
	_, errT := db.Collection(protocolTemplateCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isPublic", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	})
	_, errP := db.Collection(protocolCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	_, errA := db.Collection(protocolAssignmentCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "assignedAt", Value: -1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}}},
	})
	return errors.Join(errT, errP, errA)
}
