package repository

import (
	"context"
	"fmt"

	"learning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("progress")}
}

func (r *ProgressRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "module_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ProgressRepository) FindByUserAndModule(ctx context.Context, userID, moduleID primitive.ObjectID) (*models.Progress, error) {
	var progress models.Progress
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "module_id": moduleID}).Decode(&progress)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Progress, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.Progress
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save upserts the per (user, module) document; the unique index keeps
// concurrent first-touch creations from producing two records.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	if progress.ID.IsZero() {
		res, err := r.Col.InsertOne(ctx, progress)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the creation race; merge into the winner.
				existing, findErr := r.FindByUserAndModule(ctx, progress.UserID, progress.ModuleID)
				if findErr != nil {
					return findErr
				}
				progress.ID = existing.ID
				return r.replace(ctx, progress)
			}
			return fmt.Errorf("failed to insert progress: %w", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			progress.ID = oid
		}
		return nil
	}
	return r.replace(ctx, progress)
}

func (r *ProgressRepository) replace(ctx context.Context, progress *models.Progress) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": progress.ID}, progress)
	return err
}
