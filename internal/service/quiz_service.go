package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/grading"
	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz is not published")
	ErrDuplicateSubmit  = errors.New("a submission for this attempt was already recorded")
)

// Narrow store interfaces so the submission flow can be tested against fakes
// without a running MongoDB.
type quizStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	UpdateAnalytics(ctx context.Context, id primitive.ObjectID, analytics models.QuizAnalytics) error
}

type attemptStore interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	FindByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) ([]models.QuizAttempt, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizAttempt, error)
}

type progressStore interface {
	FindByUserAndModule(ctx context.Context, userID, moduleID primitive.ObjectID) (*models.Progress, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Progress, error)
	Save(ctx context.Context, progress *models.Progress) error
}

type pointsStore interface {
	AddPoints(ctx context.Context, id primitive.ObjectID, points int) error
	SetStreak(ctx context.Context, id primitive.ObjectID, streak int) error
}

type SubmitQuizInput struct {
	Answers   []*int `json:"answers" binding:"required"`
	TimeSpent int    `json:"time_spent"`
}

type SubmitQuizOutput struct {
	Attempt      *models.QuizAttempt `json:"attempt"`
	CanReAttempt bool                `json:"can_re_attempt"`
}

type QuizService struct {
	quizzes   quizStore
	attempts  attemptStore
	progress  progressStore
	users     pointsStore
	grader    *grading.Grader
	publisher event.Publisher
	now       func() time.Time
}

func NewQuizService(quizzes quizStore, attempts attemptStore, progress progressStore, users pointsStore, publisher event.Publisher) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		attempts:  attempts,
		progress:  progress,
		users:     users,
		grader:    grading.NewGrader(),
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit grades one answer sheet and records its consequences: the immutable
// attempt, the quiz analytics, the per-module progress and the user's point
// total. The writes are sequential rather than transactional; the unique
// (user, quiz, attempt_number) index rejects the losing side of a concurrent
// double submit before any derived state diverges.
func (s *QuizService) Submit(ctx context.Context, userID primitive.ObjectID, quizID primitive.ObjectID, in SubmitQuizInput) (*SubmitQuizOutput, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.Published {
		return nil, ErrQuizNotPublished
	}

	prior, err := s.attempts.FindByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if !s.grader.CanAttempt(prior) {
		return nil, grading.ErrNoAttemptsLeft
	}

	result, err := s.grader.Grade(quiz, grading.Submission{
		Answers:   in.Answers,
		TimeSpent: in.TimeSpent,
	}, len(prior))
	if err != nil {
		return nil, err
	}

	now := s.now()
	attempt := &models.QuizAttempt{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		QuizID:        quiz.ID,
		ModuleID:      quiz.ModuleID,
		AttemptNumber: result.AttemptNumber,
		Results:       result.Results,
		RawScore:      result.RawScore,
		AdjustedScore: result.AdjustedScore,
		PointsEarned:  result.PointsEarned,
		Passed:        result.Passed,
		CanReAttempt:  result.CanReAttempt,
		TimeSpent:     in.TimeSpent,
		CreatedAt:     now,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			return nil, ErrDuplicateSubmit
		}
		return nil, err
	}

	// Derived writes below are best effort; the attempt is the source of
	// truth and is already durable.
	quiz.Analytics.RecordAttempt(float64(result.AdjustedScore), result.Passed)
	if err := s.quizzes.UpdateAnalytics(ctx, quiz.ID, quiz.Analytics); err != nil {
		log.Printf("Failed to update analytics for quiz %s: %v", quiz.ID.Hex(), err)
	}

	if err := s.recordProgress(ctx, userID, quiz.ModuleID, attempt, now); err != nil {
		log.Printf("Failed to record progress for user %s: %v", userID.Hex(), err)
	}

	if attempt.PointsEarned > 0 {
		if err := s.users.AddPoints(ctx, userID, attempt.PointsEarned); err != nil {
			log.Printf("Failed to add points for user %s: %v", userID.Hex(), err)
		}
	}

	if err := s.publisher.Publish(event.QuizAttemptSubmitted, map[string]any{
		"userId":        userID.Hex(),
		"quizId":        quiz.ID.Hex(),
		"moduleId":      quiz.ModuleID.Hex(),
		"attemptNumber": attempt.AttemptNumber,
		"score":         attempt.AdjustedScore,
		"passed":        attempt.Passed,
	}); err != nil {
		log.Printf("Failed to publish quiz.attempt.submitted event: %v", err)
	}

	if attempt.Passed {
		metrics.QuizSubmissions.WithLabelValues("passed").Inc()
	} else {
		metrics.QuizSubmissions.WithLabelValues("failed").Inc()
	}

	return &SubmitQuizOutput{Attempt: attempt, CanReAttempt: attempt.CanReAttempt}, nil
}

func (s *QuizService) recordProgress(ctx context.Context, userID, moduleID primitive.ObjectID, attempt *models.QuizAttempt, now time.Time) error {
	progress, err := s.progress.FindByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		progress = models.NewProgress(userID, moduleID, now)
	}

	wasCompleted := progress.Status == models.StatusCompleted
	progress.RecordQuizResult(models.QuizScore{
		QuizID:        attempt.QuizID,
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		Score:         attempt.AdjustedScore,
		Passed:        attempt.Passed,
		RecordedAt:    now,
	}, attempt.AdjustedScore, now)
	progress.PointsEarned += attempt.PointsEarned
	markMilestones(progress, now)

	if err := s.progress.Save(ctx, progress); err != nil {
		return err
	}

	if err := s.users.SetStreak(ctx, userID, progress.Streak.Current); err != nil {
		log.Printf("Failed to sync streak for user %s: %v", userID.Hex(), err)
	}

	if !wasCompleted && progress.Status == models.StatusCompleted {
		if err := s.publisher.Publish(event.ModuleCompleted, map[string]any{
			"userId":   userID.Hex(),
			"moduleId": moduleID.Hex(),
		}); err != nil {
			log.Printf("Failed to publish module.completed event: %v", err)
		}
	}
	return nil
}

// GetForStudent returns a quiz with its answer key stripped.
func (s *QuizService) GetForStudent(ctx context.Context, quizID primitive.ObjectID) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.Published {
		return nil, ErrQuizNotPublished
	}
	redacted := *quiz
	redacted.Questions = make([]models.QuizQuestion, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.CorrectAnswer = -1
		q.Explanation = ""
		redacted.Questions[i] = q
	}
	return &redacted, nil
}

// History returns the user's attempts, newest quiz first per attempt order.
func (s *QuizService) History(ctx context.Context, userID primitive.ObjectID) ([]models.QuizAttempt, error) {
	return s.attempts.FindByUser(ctx, userID)
}

// AttemptsFor returns the user's attempts for one quiz together with whether
// another attempt is allowed.
func (s *QuizService) AttemptsFor(ctx context.Context, userID, quizID primitive.ObjectID) ([]models.QuizAttempt, bool, error) {
	prior, err := s.attempts.FindByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, false, err
	}
	return prior, s.grader.CanAttempt(prior), nil
}
