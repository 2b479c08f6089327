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

type VideoRepository struct {
	Col *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{Col: db.Collection("videos")}
}

func (r *VideoRepository) FindAll(ctx context.Context, moduleID primitive.ObjectID, opts ListOptions) ([]models.Video, error) {
	query := bson.M{}
	if !moduleID.IsZero() {
		query["module_id"] = moduleID
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

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, mapFindErr(err)
	}
	return &video, nil
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	video.CreatedAt = time.Now()
	video.UpdatedAt = video.CreatedAt
	res, err := r.Col.InsertOne(ctx, video)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		video.ID = oid
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}
