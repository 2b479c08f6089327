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

type QuizFilter struct {
	ModuleID      primitive.ObjectID
	Level         string
	PublishedOnly bool
}

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection("quizzes")}
}

func (r *QuizRepository) FindAll(ctx context.Context, filter QuizFilter, opts ListOptions) ([]models.Quiz, error) {
	query := bson.M{}
	if !filter.ModuleID.IsZero() {
		query["module_id"] = filter.ModuleID
	}
	if filter.Level != "" {
		query["level"] = filter.Level
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

	var quizzes []models.Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *QuizRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz); err != nil {
		return nil, mapFindErr(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = quiz.CreatedAt
	res, err := r.Col.InsertOne(ctx, quiz)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		quiz.ID = oid
	}
	return nil
}

func (r *QuizRepository) Replace(ctx context.Context, quiz *models.Quiz) error {
	quiz.UpdatedAt = time.Now()
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": quiz.ID}, quiz)
	return err
}

func (r *QuizRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QuizRepository) UpdateAnalytics(ctx context.Context, id primitive.ObjectID, analytics models.QuizAnalytics) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"analytics": analytics}})
	return err
}
