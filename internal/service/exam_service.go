package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/grading"
	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
	"learning-service/internal/selection"
)

var (
	ErrExamNotFound         = errors.New("exam not found")
	ErrExamNotPublished     = errors.New("exam is not published")
	ErrExamAttemptNotFound  = errors.New("exam attempt not found")
	ErrExamAttemptFinished  = errors.New("exam attempt was already submitted")
	ErrExamAttemptForbidden = errors.New("exam attempt belongs to another user")
	ErrNotEnoughQuestions   = errors.New("not enough questions in the bank for this exam")
	ErrExamPaperChanged     = errors.New("questions on this exam paper are no longer available")
)

type examStore interface {
	FindAll(ctx context.Context, publishedOnly bool) ([]models.Exam, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type examQuestionStore interface {
	FindByFilter(ctx context.Context, difficulty string, topicTags []string) ([]models.ExamQuestion, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ExamQuestion, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamQuestion, error)
	Create(ctx context.Context, question *models.ExamQuestion) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type examAttemptStore interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ExamAttempt, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ExamAttempt, error)
	CountByUserAndExam(ctx context.Context, userID, examID primitive.ObjectID) (int64, error)
	Replace(ctx context.Context, attempt *models.ExamAttempt) error
}

type SubmitExamInput struct {
	Answers   []*int `json:"answers" binding:"required"`
	TimeSpent int    `json:"time_spent"`
}

// StartExamOutput carries the pinned paper with its answer key stripped.
type StartExamOutput struct {
	Attempt   *models.ExamAttempt   `json:"attempt"`
	Questions []models.ExamQuestion `json:"questions"`
	TimeLimit int                   `json:"time_limit"`
}

type SubmitExamOutput struct {
	Attempt     *models.ExamAttempt `json:"attempt"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

type ExamService struct {
	exams        examStore
	questions    examQuestionStore
	attempts     examAttemptStore
	certificates *CertificateService
	grader       *grading.Grader
	selector     *selection.WeightedSelector
	publisher    event.Publisher
	now          func() time.Time
}

func NewExamService(exams examStore, questions examQuestionStore, attempts examAttemptStore, certificates *CertificateService, publisher event.Publisher) *ExamService {
	return &ExamService{
		exams:        exams,
		questions:    questions,
		attempts:     attempts,
		certificates: certificates,
		grader:       grading.NewGrader(),
		selector:     selection.NewWeightedSelector(),
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *ExamService) List(ctx context.Context, publishedOnly bool) ([]models.Exam, error) {
	return s.exams.FindAll(ctx, publishedOnly)
}

func (s *ExamService) Get(ctx context.Context, id primitive.ObjectID) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) Create(ctx context.Context, exam *models.Exam) error {
	if err := exam.Validate(); err != nil {
		return err
	}
	now := time.Now()
	exam.ID = primitive.NewObjectID()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	return s.exams.Create(ctx, exam)
}

func (s *ExamService) Update(ctx context.Context, id primitive.ObjectID, updated *models.Exam) (*models.Exam, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	err := s.exams.Update(ctx, id, bson.M{
		"title":           updated.Title,
		"description":     updated.Description,
		"difficulty":      updated.Difficulty,
		"topic_tags":      updated.TopicTags,
		"question_count":  updated.QuestionCount,
		"time_limit":      updated.TimeLimit,
		"passing_score":   updated.PassingScore,
		"validity_months": updated.ValidityMonths,
		"published":       updated.Published,
		"updated_at":      time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return s.exams.FindByID(ctx, id)
}

func (s *ExamService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	return nil
}

func (s *ExamService) CreateQuestion(ctx context.Context, question *models.ExamQuestion) error {
	if err := question.Validate(); err != nil {
		return err
	}
	now := time.Now()
	question.ID = primitive.NewObjectID()
	question.IsActive = true
	question.CreatedAt = now
	question.UpdatedAt = now
	return s.questions.Create(ctx, question)
}

func (s *ExamService) UpdateQuestion(ctx context.Context, id primitive.ObjectID, updated *models.ExamQuestion) (*models.ExamQuestion, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	err := s.questions.Update(ctx, id, bson.M{
		"text":           updated.Text,
		"options":        updated.Options,
		"correct_answer": updated.CorrectAnswer,
		"explanation":    updated.Explanation,
		"difficulty":     updated.Difficulty,
		"topic_tags":     updated.TopicTags,
		"points":         updated.Points,
		"is_active":      updated.IsActive,
		"updated_at":     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.questions.FindByID(ctx, id)
}

func (s *ExamService) DeleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	return s.questions.Delete(ctx, id)
}

// Start generates a paper for the exam and opens an attempt pinned to it.
// Questions seen on the user's prior attempts are down-ranked by exclusion so
// re-takers get a fresh paper whenever the bank allows it.
func (s *ExamService) Start(ctx context.Context, userID, examID primitive.ObjectID) (*StartExamOutput, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.Published {
		return nil, ErrExamNotPublished
	}

	bank, err := s.questions.FindByFilter(ctx, exam.Difficulty, exam.TopicTags)
	if err != nil {
		return nil, err
	}
	if len(bank) < exam.QuestionCount {
		return nil, ErrNotEnoughQuestions
	}

	priorCount, err := s.attempts.CountByUserAndExam(ctx, userID, examID)
	if err != nil {
		return nil, err
	}

	criteria := selection.DefaultCriteria()
	criteria.Difficulty = exam.Difficulty
	criteria.TopicTags = exam.TopicTags
	criteria.Count = exam.QuestionCount
	criteria.ExcludeIDs = s.seenQuestionIDs(ctx, userID, examID)
	paper, err := s.selector.SelectQuestions(bank, criteria)
	if err != nil || len(paper.Questions) < exam.QuestionCount {
		// the bank is too small to avoid repeats, reuse seen questions
		criteria.ExcludeIDs = nil
		paper, err = s.selector.SelectQuestions(bank, criteria)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	attempt := &models.ExamAttempt{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		ExamID:        exam.ID,
		AttemptNumber: int(priorCount) + 1,
		QuestionIDs:   questionIDs(paper.Questions),
		Status:        models.ExamAttemptInProgress,
		StartedAt:     now,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	return &StartExamOutput{
		Attempt:   attempt,
		Questions: redactQuestions(paper.Questions),
		TimeLimit: exam.TimeLimit,
	}, nil
}

// Submit grades an open attempt against its pinned paper and issues a
// certificate on a pass.
func (s *ExamService) Submit(ctx context.Context, userID, attemptID primitive.ObjectID, in SubmitExamInput) (*SubmitExamOutput, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrExamAttemptForbidden
	}
	if attempt.Status != models.ExamAttemptInProgress {
		return nil, ErrExamAttemptFinished
	}

	exam, err := s.Get(ctx, attempt.ExamID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FindByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, err
	}
	// FindByIDs returns the questions in pinned paper order but drops ids
	// deleted from the bank since Start. Grading a shortened paper would
	// pair answers with the wrong questions, so refuse instead.
	if len(questions) != len(attempt.QuestionIDs) {
		return nil, ErrExamPaperChanged
	}

	score, results, err := s.grader.GradeExam(questions, in.Answers)
	if err != nil {
		return nil, err
	}

	now := s.now()
	attempt.Results = results
	attempt.RawScore = score
	attempt.Passed = score >= exam.PassingScore
	attempt.TimeSpent = in.TimeSpent
	attempt.Status = models.ExamAttemptSubmitted
	attempt.SubmittedAt = now

	out := &SubmitExamOutput{Attempt: attempt}
	if attempt.Passed {
		cert, err := s.certificates.Issue(ctx, userID, exam, attempt)
		if err != nil {
			log.Printf("Failed to issue certificate for attempt %s: %v", attempt.ID.Hex(), err)
		} else {
			attempt.CertificateID = cert.ID
			out.Certificate = cert
		}
	}

	if err := s.attempts.Replace(ctx, attempt); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(event.ExamSubmitted, map[string]any{
		"userId":  userID.Hex(),
		"examId":  exam.ID.Hex(),
		"score":   score,
		"passed":  attempt.Passed,
		"attempt": attempt.AttemptNumber,
	}); err != nil {
		log.Printf("Failed to publish exam.attempt.submitted event: %v", err)
	}
	if attempt.Passed {
		metrics.ExamSubmissions.WithLabelValues("passed").Inc()
	} else {
		metrics.ExamSubmissions.WithLabelValues("failed").Inc()
	}
	return out, nil
}

func (s *ExamService) AttemptsFor(ctx context.Context, userID primitive.ObjectID) ([]models.ExamAttempt, error) {
	return s.attempts.FindByUser(ctx, userID)
}

// seenQuestionIDs collects the question ids from the user's prior attempts at
// this exam. Failure here only weakens paper freshness, never blocks a start.
func (s *ExamService) seenQuestionIDs(ctx context.Context, userID, examID primitive.ObjectID) []string {
	prior, err := s.attempts.FindByUser(ctx, userID)
	if err != nil {
		log.Printf("Failed to load prior attempts for user %s: %v", userID.Hex(), err)
		return nil
	}
	var seen []string
	for _, a := range prior {
		if a.ExamID != examID {
			continue
		}
		for _, id := range a.QuestionIDs {
			seen = append(seen, id.Hex())
		}
	}
	return seen
}

func questionIDs(questions []models.ExamQuestion) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func redactQuestions(questions []models.ExamQuestion) []models.ExamQuestion {
	out := make([]models.ExamQuestion, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = -1
		q.Explanation = ""
		out[i] = q
	}
	return out
}
