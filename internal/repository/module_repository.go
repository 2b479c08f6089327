package repository

import (
	"context"
	"fmt"
	"time"

	"learning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ModuleFilter struct {
	ModuleType    string
	Difficulty    string
	CategoryID    string
	PublishedOnly bool
}

type ModuleRepository struct {
	Col *mongo.Collection
}

func NewModuleRepository(db *mongo.Database) *ModuleRepository {
	return &ModuleRepository{Col: db.Collection("modules")}
}

func (r *ModuleRepository) FindAll(ctx context.Context, filter ModuleFilter, opts ListOptions) ([]models.Module, error) {
	query := bson.M{}
	if filter.ModuleType != "" {
		query["module_type"] = filter.ModuleType
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if filter.CategoryID != "" {
		query["category_id"] = filter.CategoryID
	}
	if filter.PublishedOnly {
		query["published"] = true
	}

	sortField, sortDir := opts.Sort()
	findOpts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDir}}).
		SetSkip(int64((opts.PageOrDefault() - 1) * opts.LimitOrDefault())).
		SetLimit(int64(opts.LimitOrDefault()))

	cur, err := r.Col.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var modules []models.Module
	if err := cur.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *ModuleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Module, error) {
	var module models.Module
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&module); err != nil {
		return nil, mapFindErr(err)
	}
	return &module, nil
}

func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	module.Version = 1
	module.CreatedAt = time.Now()
	module.UpdatedAt = module.CreatedAt
	res, err := r.Col.InsertOne(ctx, module)
	if err != nil {
		return fmt.Errorf("failed to insert module: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		module.ID = oid
	}
	return nil
}

// Replace persists the module after a mutating save, pushing the prior
// snapshot and bumping the version.
func (r *ModuleRepository) Replace(ctx context.Context, module *models.Module, snapshot models.ModuleVersion) error {
	module.PreviousVersions = append(module.PreviousVersions, snapshot)
	module.Version++
	module.UpdatedAt = time.Now()
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": module.ID}, module)
	return err
}

// Delete hard-deletes; related videos and quizzes are left dangling by id
// reference, no cascade.
func (r *ModuleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ModuleRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"analytics.views": 1}})
	return err
}

// RecordCompletion folds a completed run into the module analytics.
func (r *ModuleRepository) RecordCompletion(ctx context.Context, id primitive.ObjectID, score float64) error {
	module, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	a := module.Analytics
	a.AverageScore = (a.AverageScore*float64(a.Completions) + score) / float64(a.Completions+1)
	a.Completions++
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"analytics": a}})
	return err
}

type CategoryRepository struct {
	Col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{Col: db.Collection("category_modules")}
}

func (r *CategoryRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.CategoryModule, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}
	cur, err := r.Col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var categories []models.CategoryModule
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategoryModule, error) {
	var category models.CategoryModule
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, mapFindErr(err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.CategoryModule) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	res, err := r.Col.InsertOne(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
