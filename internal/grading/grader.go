package grading

import (
	"errors"
	"math"

	"learning-service/internal/models"
)

var (
	// ErrNoQuestions guards the zero-question division; a quiz with no
	// questions cannot be graded.
	ErrNoQuestions = errors.New("quiz has no questions")

	// ErrNoAttemptsLeft means the attempt policy forbids another submission:
	// either a perfect first attempt or an already-used re-attempt.
	ErrNoAttemptsLeft = errors.New("no attempts left for this quiz")
)

// Grader applies the attempt-scoped scoring policy: the first attempt earns
// its raw score, the single allowed re-attempt earns at most
// MaxReAttemptPoints, and nothing after that.
type Grader struct{}

func NewGrader() *Grader {
	return &Grader{}
}

// CanAttempt reports whether another submission is allowed given the prior
// attempts for this user and quiz.
func (g *Grader) CanAttempt(prior []models.QuizAttempt) bool {
	if len(prior) >= 2 {
		return false
	}
	for _, a := range prior {
		if !a.CanReAttempt {
			return false
		}
	}
	return true
}

// Grade evaluates a submission against the quiz questions. priorAttempts is
// the count of existing attempts for this user and quiz; the new attempt is
// numbered priorAttempts+1.
func (g *Grader) Grade(quiz *models.Quiz, sub Submission, priorAttempts int) (*Result, error) {
	total := len(quiz.Questions)
	if total == 0 {
		return nil, ErrNoQuestions
	}
	attemptNumber := priorAttempts + 1
	if attemptNumber > 2 {
		return nil, ErrNoAttemptsLeft
	}

	results := make([]models.QuestionResult, total)
	correct := 0
	for i, q := range quiz.Questions {
		var submitted *int
		if i < len(sub.Answers) {
			submitted = sub.Answers[i]
		}
		isCorrect := submitted != nil && *submitted == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		results[i] = models.QuestionResult{
			QuestionIndex: i,
			Submitted:     submitted,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		}
	}

	rawScore := int(math.Round(float64(correct) / float64(total) * 100))

	points := rawScore
	canReAttempt := false
	if attemptNumber == 1 {
		// Perfect first attempt completes the quiz outright; anything less
		// leaves exactly one re-attempt.
		canReAttempt = rawScore < 100
	} else {
		if points > MaxReAttemptPoints {
			points = MaxReAttemptPoints
		}
	}

	// The cap applies to points only; the displayed score stays raw.
	adjusted := rawScore

	return &Result{
		AttemptNumber: attemptNumber,
		CorrectCount:  correct,
		RawScore:      rawScore,
		AdjustedScore: adjusted,
		PointsEarned:  points,
		Passed:        adjusted >= quiz.PassingScore,
		CanReAttempt:  canReAttempt,
		Results:       results,
	}, nil
}

// GradeExam scores an exam paper: plain percentage over the pinned question
// list, no attempt cap.
func (g *Grader) GradeExam(questions []models.ExamQuestion, answers []*int) (int, []models.QuestionResult, error) {
	total := len(questions)
	if total == 0 {
		return 0, nil, ErrNoQuestions
	}
	results := make([]models.QuestionResult, total)
	correct := 0
	for i, q := range questions {
		var submitted *int
		if i < len(answers) {
			submitted = answers[i]
		}
		isCorrect := submitted != nil && *submitted == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		results[i] = models.QuestionResult{
			QuestionIndex: i,
			Submitted:     submitted,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		}
	}
	score := int(math.Round(float64(correct) / float64(total) * 100))
	return score, results, nil
}
