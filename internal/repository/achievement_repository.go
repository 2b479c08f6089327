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

// ErrAlreadyAwarded is returned when the (user, achievement) pair already
// exists; awarding is idempotent at the index level.
var ErrAlreadyAwarded = errors.New("achievement already awarded to this user")

type AchievementRepository struct {
	Col       *mongo.Collection
	AwardsCol *mongo.Collection
}

func NewAchievementRepository(db *mongo.Database) *AchievementRepository {
	return &AchievementRepository{
		Col:       db.Collection("achievements"),
		AwardsCol: db.Collection("user_achievements"),
	}
}

func (r *AchievementRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.AwardsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "achievement_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *AchievementRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Achievement, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}
	cur, err := r.Col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var achievements []models.Achievement
	if err := cur.All(ctx, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *AchievementRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&achievement); err != nil {
		return nil, mapFindErr(err)
	}
	return &achievement, nil
}

func (r *AchievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	achievement.CreatedAt = time.Now()
	achievement.UpdatedAt = achievement.CreatedAt
	res, err := r.Col.InsertOne(ctx, achievement)
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		achievement.ID = oid
	}
	return nil
}

func (r *AchievementRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *AchievementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AchievementRepository) CreateAward(ctx context.Context, award *models.UserAchievement) error {
	award.AwardedAt = time.Now()
	res, err := r.AwardsCol.InsertOne(ctx, award)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyAwarded
		}
		return fmt.Errorf("failed to insert award: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		award.ID = oid
	}
	return nil
}

func (r *AchievementRepository) FindAwardsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	cur, err := r.AwardsCol.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "awarded_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var awards []models.UserAchievement
	if err := cur.All(ctx, &awards); err != nil {
		return nil, err
	}
	return awards, nil
}
