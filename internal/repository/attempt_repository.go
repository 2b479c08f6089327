package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateAttempt signals that two concurrent submissions computed the
// same attempt number; the losing insert is rejected by the unique index.
var ErrDuplicateAttempt = errors.New("attempt number already recorded")

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("quiz_attempts")}
}

func (r *AttemptRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "quiz_id", Value: 1},
			{Key: "attempt_number", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.CreatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateAttempt
		}
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid
	}
	return nil
}

func (r *AttemptRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt); err != nil {
		return nil, mapFindErr(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) ([]models.QuizAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "quiz_id": quizID},
		options.Find().SetSort(bson.D{{Key: "attempt_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.QuizAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *AttemptRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizAttempt, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.QuizAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *AttemptRepository) CountByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"user_id": userID, "quiz_id": quizID})
}
