package grading

import "learning-service/internal/models"

// MaxReAttemptPoints caps the points a re-attempt can earn; the displayed
// score is never capped.
const MaxReAttemptPoints = 85

// Submission is one user's answer sheet for a quiz. Entries are option
// indexes; nil means the question was left unanswered.
type Submission struct {
	Answers   []*int
	TimeSpent int
}

// Result is the graded outcome of one submission.
type Result struct {
	AttemptNumber int
	CorrectCount  int
	RawScore      int
	AdjustedScore int
	PointsEarned  int
	Passed        bool
	CanReAttempt  bool
	Results       []models.QuestionResult
}
