package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionResult records the outcome of a single question within an attempt.
// Submitted is nil when the question was left unanswered.
type QuestionResult struct {
	QuestionIndex int    `bson:"question_index" json:"question_index"`
	Submitted     *int   `bson:"submitted" json:"submitted"`
	CorrectAnswer int    `bson:"correct_answer" json:"correct_answer"`
	IsCorrect     bool   `bson:"is_correct" json:"is_correct"`
	Explanation   string `bson:"explanation,omitempty" json:"explanation,omitempty"`
}

// QuizAttempt is immutable once inserted.
type QuizAttempt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	QuizID        primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	ModuleID      primitive.ObjectID `bson:"module_id" json:"module_id"`
	AttemptNumber int                `bson:"attempt_number" json:"attempt_number"`
	Results       []QuestionResult   `bson:"results" json:"results"`
	RawScore      int                `bson:"raw_score" json:"raw_score"`
	AdjustedScore int                `bson:"adjusted_score" json:"adjusted_score"`
	PointsEarned  int                `bson:"points_earned" json:"points_earned"`
	Passed        bool               `bson:"passed" json:"passed"`
	CanReAttempt  bool               `bson:"can_re_attempt" json:"can_re_attempt"`
	TimeSpent     int                `bson:"time_spent" json:"time_spent"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
