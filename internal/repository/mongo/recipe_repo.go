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
	recipeCollectionName           = "recipes"
	recipeAssignmentCollectionName = "recipe_assignments"
)

type mongoRecipeRepository struct {
	collection *mongo.Collection
}

// NewMongoRecipeRepository creates a RecipeRepository backed by MongoDB.
func NewMongoRecipeRepository(db *mongo.Database) repository.RecipeRepository {
	return &mongoRecipeRepository{collection: db.Collection(recipeCollectionName)}
}

func (r *mongoRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error) {
	if recipe.Name == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	recipe.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, recipe)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoRecipeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *mongoRecipeRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return []domain.Recipe{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[domain.Recipe](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

func (r *mongoRecipeRepository) List(ctx context.Context, approvedOnly bool) ([]domain.Recipe, error) {
	filter := bson.M{}
	if approvedOnly {
		filter["isApproved"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[domain.Recipe](ctx, r.collection, filter, opts)
}

// Update replaces every editable field. CreatedBy and CreatedAt are preserved.
func (r *mongoRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	if recipe.ID == primitive.NilObjectID || recipe.Name == "" {
		return repository.ErrInvalidRecord
	}
	recipe.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":            recipe.Name,
			"description":     recipe.Description,
			"mealTypes":       recipe.MealTypes,
			"ingredients":     recipe.Ingredients,
			"instructions":    recipe.Instructions,
			"prepTimeMinutes": recipe.PrepTimeMinutes,
			"cookTimeMinutes": recipe.CookTimeMinutes,
			"servings":        recipe.Servings,
			"nutrition":       recipe.Nutrition,
			"imageUrl":        recipe.ImageURL,
			"isApproved":      recipe.IsApproved,
			"updatedAt":       recipe.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": recipe.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRecipeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Recipe assignments ---

type mongoRecipeAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoRecipeAssignmentRepository creates a RecipeAssignmentRepository backed by MongoDB.
func NewMongoRecipeAssignmentRepository(db *mongo.Database) repository.RecipeAssignmentRepository {
	return &mongoRecipeAssignmentRepository{collection: db.Collection(recipeAssignmentCollectionName)}
}

// Assign upserts one link per customer in a single unordered bulk write.
func (r *mongoRecipeAssignmentRepository) Assign(ctx context.Context, recipeID, assignedBy primitive.ObjectID, customerIDs []primitive.ObjectID) (int, error) {
	if len(customerIDs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(customerIDs))
	for _, customerID := range customerIDs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"recipeId": recipeID, "customerId": customerID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"assignedBy": assignedBy,
				"assignedAt": now,
			}}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(result.UpsertedCount), nil
}

func (r *mongoRecipeAssignmentRepository) RecipeIDsForCustomer(ctx context.Context, customerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	links, err := findAll[domain.RecipeAssignment](ctx, r.collection, bson.M{"customerId": customerID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(links))
	for i, l := range links {
		ids[i] = l.RecipeID
	}
	return ids, nil
}

func (r *mongoRecipeAssignmentRepository) DeleteByRecipe(ctx context.Context, recipeID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"recipeId": recipeID})
	return err
}

// EnsureRecipeIndexes covers recipes and recipe assignments.
func EnsureRecipeIndexes(ctx context.Context, db *mongo.Database) error {
	_, errR := db.Collection(recipeCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "name", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("recipe_text_search"),
		},
	})
	_, errA := db.Collection(recipeAssignmentCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipeId", Value: 1}, {Key: "customerId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	})
	return errors.Join(errR, errA)
}
