package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent      = "student"
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleTeacher      = "teacher"
)

var validRoles = map[string]bool{
	RoleStudent:      true,
	RoleAdmin:        true,
	RoleProfessional: true,
	RoleTeacher:      true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

type ProgressSummary struct {
	TotalPoints   int      `bson:"total_points" json:"total_points"`
	CurrentStreak int      `bson:"current_streak" json:"current_streak"`
	Badges        []string `bson:"badges" json:"badges"`
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	PasswordHash     string             `bson:"password_hash" json:"-"`
	Role             string             `bson:"role" json:"role"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	Progress         ProgressSummary    `bson:"progress" json:"progress"`
	SubscriptionTier string             `bson:"subscription_tier" json:"subscription_tier"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
	LastLoginAt      time.Time          `bson:"last_login_at,omitempty" json:"last_login_at"`
}
