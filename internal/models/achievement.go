package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementRewards struct {
	Points int `bson:"points" json:"points"`
	XP     int `bson:"xp" json:"xp"`
	Coins  int `bson:"coins" json:"coins"`
}

type Achievement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`
	Rarity         string             `bson:"rarity" json:"rarity"`
	PointsRequired int                `bson:"points_required" json:"points_required"`
	Rewards        AchievementRewards `bson:"rewards" json:"rewards"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

func (a *Achievement) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("achievement name is required")
	}
	if a.PointsRequired < 0 {
		return fmt.Errorf("points required must not be negative")
	}
	return nil
}

// UserAchievement is a per-user award record. Rewards are copied from the
// achievement definition at award time and never recomputed.
type UserAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	AchievementID primitive.ObjectID `bson:"achievement_id" json:"achievement_id"`
	Rewards       AchievementRewards `bson:"rewards" json:"rewards"`
	AwardedAt     time.Time          `bson:"awarded_at" json:"awarded_at"`
}
