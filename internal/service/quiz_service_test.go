package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/grading"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

type fakeQuizStore struct {
	quizzes map[primitive.ObjectID]*models.Quiz
}

func (f *fakeQuizStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *quiz
	return &cp, nil
}

func (f *fakeQuizStore) UpdateAnalytics(_ context.Context, id primitive.ObjectID, analytics models.QuizAnalytics) error {
	f.quizzes[id].Analytics = analytics
	return nil
}

type fakeAttemptStore struct {
	attempts  []models.QuizAttempt
	createErr error
}

func (f *fakeAttemptStore) Create(_ context.Context, attempt *models.QuizAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptStore) FindByUserAndQuiz(_ context.Context, userID, quizID primitive.ObjectID) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	byKey map[string]*models.Progress
}

func progressKey(userID, moduleID primitive.ObjectID) string {
	return userID.Hex() + ":" + moduleID.Hex()
}

func (f *fakeProgressStore) FindByUserAndModule(_ context.Context, userID, moduleID primitive.ObjectID) (*models.Progress, error) {
	p, ok := f.byKey[progressKey(userID, moduleID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Progress, error) {
	var out []models.Progress
	for _, p := range f.byKey {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProgressStore) Save(_ context.Context, progress *models.Progress) error {
	cp := *progress
	f.byKey[progressKey(progress.UserID, progress.ModuleID)] = &cp
	return nil
}

type fakePointsStore struct {
	points  map[primitive.ObjectID]int
	streaks map[primitive.ObjectID]int
}

func (f *fakePointsStore) AddPoints(_ context.Context, id primitive.ObjectID, points int) error {
	f.points[id] += points
	return nil
}

func (f *fakePointsStore) SetStreak(_ context.Context, id primitive.ObjectID, streak int) error {
	f.streaks[id] = streak
	return nil
}

func fourQuestionQuiz() *models.Quiz {
	questions := make([]models.QuizQuestion, 4)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			Text:          "q",
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: 1,
		}
	}
	return &models.Quiz{
		ID:           primitive.NewObjectID(),
		Title:        "Networking basics",
		ModuleID:     primitive.NewObjectID(),
		Questions:    questions,
		PassingScore: 70,
		Published:    true,
	}
}

func answers(vals ...int) []*int {
	out := make([]*int, len(vals))
	for i := range vals {
		v := vals[i]
		out[i] = &v
	}
	return out
}

func newTestQuizService(quiz *models.Quiz) (*QuizService, *fakeQuizStore, *fakeAttemptStore, *fakeProgressStore, *fakePointsStore, *event.MockPublisher) {
	quizzes := &fakeQuizStore{quizzes: map[primitive.ObjectID]*models.Quiz{quiz.ID: quiz}}
	attempts := &fakeAttemptStore{}
	progress := &fakeProgressStore{byKey: map[string]*models.Progress{}}
	users := &fakePointsStore{points: map[primitive.ObjectID]int{}, streaks: map[primitive.ObjectID]int{}}
	publisher := event.NewMockPublisher()
	svc := NewQuizService(quizzes, attempts, progress, users, publisher)
	return svc, quizzes, attempts, progress, users, publisher
}

func TestSubmitFirstAttempt(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, quizzes, attempts, progress, users, publisher := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	out, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{
		Answers:   answers(1, 1, 1, 0), // 3 of 4 correct
		TimeSpent: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Attempt.AttemptNumber)
	assert.Equal(t, 75, out.Attempt.RawScore)
	assert.Equal(t, 75, out.Attempt.AdjustedScore)
	assert.Equal(t, 75, out.Attempt.PointsEarned)
	assert.True(t, out.Attempt.Passed)
	assert.True(t, out.CanReAttempt)

	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, quiz.ModuleID, attempts.attempts[0].ModuleID)

	stored := quizzes.quizzes[quiz.ID]
	assert.Equal(t, 1, stored.Analytics.Attempts)
	assert.InDelta(t, 75.0, stored.Analytics.AverageScore, 0.001)
	assert.InDelta(t, 100.0, stored.Analytics.CompletionRate, 0.001)

	p := progress.byKey[progressKey(userID, quiz.ModuleID)]
	require.NotNil(t, p)
	assert.Equal(t, 75, p.Percentage)
	assert.Equal(t, models.StatusInProgress, p.Status)
	require.Len(t, p.QuizScores, 1)
	assert.Equal(t, 75, p.QuizScores[0].Score)

	assert.Equal(t, 75, users.points[userID])
	assert.Equal(t, 1, users.streaks[userID])

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, event.QuizAttemptSubmitted, publisher.Events[0].Type)
}

func TestSubmitReAttemptCapsPointsNotScore(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, progress, users, _ := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 0, 0)})
	require.NoError(t, err)

	out, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Attempt.AttemptNumber)
	assert.Equal(t, 100, out.Attempt.RawScore)
	assert.Equal(t, 100, out.Attempt.AdjustedScore)
	assert.Equal(t, grading.MaxReAttemptPoints, out.Attempt.PointsEarned)
	assert.False(t, out.CanReAttempt)

	// displayed progress follows the uncapped score
	p := progress.byKey[progressKey(userID, quiz.ModuleID)]
	assert.Equal(t, 100, p.Percentage)
	assert.Equal(t, models.StatusCompleted, p.Status)

	assert.Equal(t, 50+grading.MaxReAttemptPoints, users.points[userID])
}

func TestSubmitThirdAttemptRejected(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, _, _, _ := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 0, 0, 0)})
		require.NoError(t, err)
	}
	_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	assert.ErrorIs(t, err, grading.ErrNoAttemptsLeft)
}

func TestSubmitPerfectFirstAttemptEndsQuiz(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, _, _, _ := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	out, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Attempt.PointsEarned)
	assert.False(t, out.CanReAttempt)

	_, err = svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	assert.ErrorIs(t, err, grading.ErrNoAttemptsLeft)
}

func TestSubmitUnpublishedQuiz(t *testing.T) {
	quiz := fourQuestionQuiz()
	quiz.Published = false
	svc, _, _, _, _, _ := newTestQuizService(quiz)

	_, err := svc.Submit(context.Background(), primitive.NewObjectID(), quiz.ID, SubmitQuizInput{Answers: answers(1)})
	assert.ErrorIs(t, err, ErrQuizNotPublished)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, _, _, _ := newTestQuizService(quiz)

	_, err := svc.Submit(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), SubmitQuizInput{Answers: answers(1)})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitConcurrentDuplicateMapsToDuplicateSubmit(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, attempts, progress, users, publisher := newTestQuizService(quiz)
	attempts.createErr = repository.ErrDuplicateAttempt
	userID := primitive.NewObjectID()

	_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	assert.ErrorIs(t, err, ErrDuplicateSubmit)

	// no derived state was touched for the losing submit
	assert.Empty(t, progress.byKey)
	assert.Empty(t, users.points)
	assert.Empty(t, publisher.Events)
}

func TestSubmitModuleCompletionEvent(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, _, _, publisher := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 1, 1)})
	require.NoError(t, err)

	var types []string
	for _, e := range publisher.Events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, event.ModuleCompleted)
}

func TestSubmitStreakAccumulatesAcrossDays(t *testing.T) {
	quiz := fourQuestionQuiz()
	svc, _, _, progress, users, _ := newTestQuizService(quiz)
	userID := primitive.NewObjectID()

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	_, err := svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 0, 0, 0)})
	require.NoError(t, err)

	svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	_, err = svc.Submit(context.Background(), userID, quiz.ID, SubmitQuizInput{Answers: answers(1, 1, 0, 0)})
	require.NoError(t, err)

	p := progress.byKey[progressKey(userID, quiz.ModuleID)]
	assert.Equal(t, 2, p.Streak.Current)
	assert.Equal(t, 2, users.streaks[userID])
}

func TestGetForStudentStripsAnswerKey(t *testing.T) {
	quiz := fourQuestionQuiz()
	quiz.Questions[0].Explanation = "because"
	svc, _, _, _, _, _ := newTestQuizService(quiz)

	got, err := svc.GetForStudent(context.Background(), quiz.ID)
	require.NoError(t, err)
	for _, q := range got.Questions {
		assert.Equal(t, -1, q.CorrectAnswer)
		assert.Empty(t, q.Explanation)
	}
	// the stored quiz keeps its key
	assert.Equal(t, 1, quiz.Questions[0].CorrectAnswer)
}
