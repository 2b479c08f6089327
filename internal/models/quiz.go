package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizQuestion struct {
	Text          string   `bson:"text" json:"text"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correct_answer" json:"correct_answer"`
	Explanation   string   `bson:"explanation" json:"explanation"`
	Points        int      `bson:"points" json:"points"`
}

type QuizAnalytics struct {
	Attempts       int     `bson:"attempts" json:"attempts"`
	AverageScore   float64 `bson:"average_score" json:"average_score"`
	CompletionRate float64 `bson:"completion_rate" json:"completion_rate"`
}

type Quiz struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Level        string             `bson:"level" json:"level"`
	ModuleID     primitive.ObjectID `bson:"module_id" json:"module_id"`
	Questions    []QuizQuestion     `bson:"questions" json:"questions"`
	TimeLimit    int                `bson:"time_limit" json:"time_limit"`
	PassingScore int                `bson:"passing_score" json:"passing_score"`
	Published    bool               `bson:"published" json:"published"`
	Analytics    QuizAnalytics      `bson:"analytics" json:"analytics"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Validate enforces the write-time invariants: a quiz carries at least one
// question and every correct-answer index lands inside its options.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("quiz title is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz must have at least one question")
	}
	for i, question := range q.Questions {
		if question.Text == "" {
			return fmt.Errorf("question %d: text is required", i)
		}
		if len(question.Options) < 2 {
			return fmt.Errorf("question %d: at least two options required", i)
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			return fmt.Errorf("question %d: correct answer index %d out of bounds for %d options",
				i, question.CorrectAnswer, len(question.Options))
		}
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return fmt.Errorf("passing score must be between 0 and 100")
	}
	return nil
}

// RecordAttempt folds one graded attempt into the rolling analytics.
func (a *QuizAnalytics) RecordAttempt(score float64, passed bool) {
	prevPassed := a.CompletionRate * float64(a.Attempts) / 100
	a.AverageScore = (a.AverageScore*float64(a.Attempts) + score) / float64(a.Attempts+1)
	a.Attempts++
	if passed {
		prevPassed++
	}
	a.CompletionRate = prevPassed / float64(a.Attempts) * 100
}
