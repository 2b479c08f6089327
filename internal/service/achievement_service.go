package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var (
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrAchievementInactive = errors.New("achievement is not active")
	ErrAlreadyAwarded      = errors.New("achievement already awarded to this user")
)

// achievementStore is the persistence surface the service needs; the
// interface keeps the award flow testable without a running MongoDB.
type achievementStore interface {
	FindAll(ctx context.Context, activeOnly bool) ([]models.Achievement, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error)
	Create(ctx context.Context, achievement *models.Achievement) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CreateAward(ctx context.Context, award *models.UserAchievement) error
	FindAwardsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error)
}

type rewardStore interface {
	AddPoints(ctx context.Context, id primitive.ObjectID, points int) error
	AddBadge(ctx context.Context, id primitive.ObjectID, badge string) error
}

type AchievementService struct {
	achievements achievementStore
	users        rewardStore
	publisher    event.Publisher
}

func NewAchievementService(achievements achievementStore, users rewardStore, publisher event.Publisher) *AchievementService {
	return &AchievementService{achievements: achievements, users: users, publisher: publisher}
}

func (s *AchievementService) List(ctx context.Context, activeOnly bool) ([]models.Achievement, error) {
	return s.achievements.FindAll(ctx, activeOnly)
}

func (s *AchievementService) Get(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	achievement, err := s.achievements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}
	return achievement, nil
}

func (s *AchievementService) Create(ctx context.Context, achievement *models.Achievement) error {
	if err := achievement.Validate(); err != nil {
		return err
	}
	now := time.Now()
	achievement.ID = primitive.NewObjectID()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now
	return s.achievements.Create(ctx, achievement)
}

func (s *AchievementService) Update(ctx context.Context, id primitive.ObjectID, updated *models.Achievement) (*models.Achievement, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	err := s.achievements.Update(ctx, id, bson.M{
		"name":            updated.Name,
		"description":     updated.Description,
		"category":        updated.Category,
		"rarity":          updated.Rarity,
		"points_required": updated.PointsRequired,
		"rewards":         updated.Rewards,
		"is_active":       updated.IsActive,
		"updated_at":      time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}
	return s.achievements.FindByID(ctx, id)
}

func (s *AchievementService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.achievements.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAchievementNotFound
		}
		return err
	}
	return nil
}

// Award grants an achievement to a user exactly once. Rewards are copied onto
// the award record at grant time, so later edits to the definition do not
// change what was earned. Idempotency is enforced by the unique
// (user, achievement) index rather than a read-then-write check.
func (s *AchievementService) Award(ctx context.Context, userID, achievementID primitive.ObjectID) (*models.UserAchievement, error) {
	achievement, err := s.Get(ctx, achievementID)
	if err != nil {
		return nil, err
	}
	if !achievement.IsActive {
		return nil, ErrAchievementInactive
	}

	award := &models.UserAchievement{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		AchievementID: achievement.ID,
		Rewards:       achievement.Rewards,
		AwardedAt:     time.Now(),
	}
	if err := s.achievements.CreateAward(ctx, award); err != nil {
		if errors.Is(err, repository.ErrAlreadyAwarded) {
			return nil, ErrAlreadyAwarded
		}
		return nil, err
	}

	if achievement.Rewards.Points > 0 {
		if err := s.users.AddPoints(ctx, userID, achievement.Rewards.Points); err != nil {
			log.Printf("Failed to grant reward points for achievement %s: %v", achievement.ID.Hex(), err)
		}
	}
	if err := s.users.AddBadge(ctx, userID, achievement.Name); err != nil {
		log.Printf("Failed to add badge %q for user %s: %v", achievement.Name, userID.Hex(), err)
	}

	if err := s.publisher.Publish(event.AchievementAwarded, map[string]any{
		"userId":        userID.Hex(),
		"achievementId": achievement.ID.Hex(),
		"name":          achievement.Name,
		"rewards":       achievement.Rewards,
	}); err != nil {
		log.Printf("Failed to publish achievement.awarded event: %v", err)
	}
	metrics.AchievementsAwarded.Inc()
	return award, nil
}

func (s *AchievementService) ListAwards(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	return s.achievements.FindAwardsByUser(ctx, userID)
}
