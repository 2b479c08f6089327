package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExamQuestion lives in a shared question bank; exam papers are assembled
// from it by the selection package.
type ExamQuestion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text          string             `bson:"text" json:"text"`
	Options       []string           `bson:"options" json:"options"`
	CorrectAnswer int                `bson:"correct_answer" json:"correct_answer"`
	Explanation   string             `bson:"explanation" json:"explanation"`
	Difficulty    string             `bson:"difficulty" json:"difficulty"`
	TopicTags     []string           `bson:"topic_tags" json:"topic_tags"`
	Points        int                `bson:"points" json:"points"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (q *ExamQuestion) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("at least two options required")
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correct answer index %d out of bounds for %d options", q.CorrectAnswer, len(q.Options))
	}
	return nil
}

type Exam struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Difficulty     string             `bson:"difficulty" json:"difficulty"`
	TopicTags      []string           `bson:"topic_tags" json:"topic_tags"`
	QuestionCount  int                `bson:"question_count" json:"question_count"`
	TimeLimit      int                `bson:"time_limit" json:"time_limit"`
	PassingScore   int                `bson:"passing_score" json:"passing_score"`
	ValidityMonths int                `bson:"validity_months" json:"validity_months"`
	Published      bool               `bson:"published" json:"published"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

func (e *Exam) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("exam title is required")
	}
	if e.QuestionCount <= 0 {
		return fmt.Errorf("exam question count must be positive")
	}
	if e.PassingScore < 0 || e.PassingScore > 100 {
		return fmt.Errorf("passing score must be between 0 and 100")
	}
	return nil
}

// ExamAttempt mirrors QuizAttempt for the certification flow. QuestionIDs
// pins the generated paper so grading uses the same questions the candidate
// saw.
type ExamAttempt struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID   `bson:"user_id" json:"user_id"`
	ExamID        primitive.ObjectID   `bson:"exam_id" json:"exam_id"`
	AttemptNumber int                  `bson:"attempt_number" json:"attempt_number"`
	QuestionIDs   []primitive.ObjectID `bson:"question_ids" json:"question_ids"`
	Results       []QuestionResult     `bson:"results" json:"results"`
	RawScore      int                  `bson:"raw_score" json:"raw_score"`
	Passed        bool                 `bson:"passed" json:"passed"`
	TimeSpent     int                  `bson:"time_spent" json:"time_spent"`
	Status        string               `bson:"status" json:"status"`
	CertificateID primitive.ObjectID   `bson:"certificate_id,omitempty" json:"certificate_id,omitempty"`
	StartedAt     time.Time            `bson:"started_at" json:"started_at"`
	SubmittedAt   time.Time            `bson:"submitted_at,omitempty" json:"submitted_at"`
}

const (
	ExamAttemptInProgress = "in-progress"
	ExamAttemptSubmitted  = "submitted"
)
