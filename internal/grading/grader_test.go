package grading

import (
	"testing"

	"learning-service/internal/models"
)

func intPtr(v int) *int { return &v }

func makeQuiz(n int, passingScore int) *models.Quiz {
	quiz := &models.Quiz{Title: "test quiz", PassingScore: passingScore}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Text:          "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		})
	}
	return quiz
}

// answersWithCorrect builds an answer sheet with the first `correct`
// positions right and the rest wrong.
func answersWithCorrect(quiz *models.Quiz, correct int) []*int {
	answers := make([]*int, len(quiz.Questions))
	for i := range quiz.Questions {
		if i < correct {
			answers[i] = intPtr(quiz.Questions[i].CorrectAnswer)
		} else {
			answers[i] = intPtr((quiz.Questions[i].CorrectAnswer + 1) % len(quiz.Questions[i].Options))
		}
	}
	return answers
}

func TestRawScoreRounding(t *testing.T) {
	g := NewGrader()

	testCases := []struct {
		name      string
		questions int
		correct   int
		expected  int
	}{
		{"7 of 10", 10, 7, 70},
		{"all correct", 10, 10, 100},
		{"none correct", 10, 0, 0},
		{"1 of 3 rounds to 33", 3, 1, 33},
		{"2 of 3 rounds to 67", 3, 2, 67},
		{"1 of 6 rounds to 17", 6, 1, 17},
		{"5 of 8 rounds to 63", 8, 5, 63},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := makeQuiz(tc.questions, 70)
			res, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, tc.correct)}, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.RawScore != tc.expected {
				t.Errorf("expected raw score %d, got %d", tc.expected, res.RawScore)
			}
			if res.CorrectCount != tc.correct {
				t.Errorf("expected correct count %d, got %d", tc.correct, res.CorrectCount)
			}
		})
	}
}

func TestFirstAttemptPoints(t *testing.T) {
	g := NewGrader()
	quiz := makeQuiz(10, 70)

	res, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, 7)}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AttemptNumber != 1 {
		t.Errorf("expected attempt number 1, got %d", res.AttemptNumber)
	}
	if res.PointsEarned != 70 {
		t.Errorf("first attempt points should equal raw score, got %d", res.PointsEarned)
	}
	if !res.CanReAttempt {
		t.Error("imperfect first attempt should allow a re-attempt")
	}
}

func TestPerfectFirstAttemptDisallowsReAttempt(t *testing.T) {
	g := NewGrader()
	quiz := makeQuiz(10, 70)

	res, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, 10)}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PointsEarned != 100 {
		t.Errorf("expected 100 points, got %d", res.PointsEarned)
	}
	if res.CanReAttempt {
		t.Error("perfect first attempt must not allow a re-attempt")
	}
}

func TestSecondAttemptPointsCapped(t *testing.T) {
	g := NewGrader()
	quiz := makeQuiz(10, 70)

	testCases := []struct {
		name           string
		correct        int
		expectedPoints int
	}{
		{"perfect re-attempt capped at 85", 10, 85},
		{"90 capped at 85", 9, 85},
		{"below cap unchanged", 7, 70},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, tc.correct)}, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.AttemptNumber != 2 {
				t.Errorf("expected attempt number 2, got %d", res.AttemptNumber)
			}
			if res.PointsEarned != tc.expectedPoints {
				t.Errorf("expected %d points, got %d", tc.expectedPoints, res.PointsEarned)
			}
			if res.CanReAttempt {
				t.Error("second attempt must never allow another re-attempt")
			}
			// The cap applies to points only, never the displayed score.
			if res.AdjustedScore != res.RawScore {
				t.Errorf("adjusted score %d should equal raw score %d", res.AdjustedScore, res.RawScore)
			}
		})
	}
}

func TestThirdAttemptRejected(t *testing.T) {
	g := NewGrader()
	quiz := makeQuiz(10, 70)

	_, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, 10)}, 2)
	if err != ErrNoAttemptsLeft {
		t.Errorf("expected ErrNoAttemptsLeft, got %v", err)
	}
}

func TestPassedThreshold(t *testing.T) {
	g := NewGrader()

	testCases := []struct {
		name         string
		correct      int
		passingScore int
		passed       bool
	}{
		{"exactly at threshold passes", 7, 70, true},
		{"above threshold passes", 8, 70, true},
		{"below threshold fails", 6, 70, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := makeQuiz(10, tc.passingScore)
			res, err := g.Grade(quiz, Submission{Answers: answersWithCorrect(quiz, tc.correct)}, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Passed != tc.passed {
				t.Errorf("expected passed=%v, got %v", tc.passed, res.Passed)
			}
		})
	}
}

func TestUnansweredAndShortSheets(t *testing.T) {
	g := NewGrader()
	quiz := makeQuiz(4, 50)

	// Two correct answers, one explicit nil, one missing entirely.
	answers := []*int{
		intPtr(quiz.Questions[0].CorrectAnswer),
		intPtr(quiz.Questions[1].CorrectAnswer),
		nil,
	}
	res, err := g.Grade(quiz, Submission{Answers: answers}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RawScore != 50 {
		t.Errorf("expected raw score 50, got %d", res.RawScore)
	}
	if len(res.Results) != 4 {
		t.Fatalf("expected 4 per-question results, got %d", len(res.Results))
	}
	if res.Results[2].Submitted != nil || res.Results[2].IsCorrect {
		t.Error("nil answer must be recorded as unanswered and incorrect")
	}
	if res.Results[3].Submitted != nil {
		t.Error("missing answer must be recorded as unanswered")
	}
}

func TestZeroQuestionQuizGuard(t *testing.T) {
	g := NewGrader()
	quiz := &models.Quiz{Title: "empty", PassingScore: 50}

	_, err := g.Grade(quiz, Submission{}, 0)
	if err != ErrNoQuestions {
		t.Errorf("expected ErrNoQuestions, got %v", err)
	}
}

func TestCanAttempt(t *testing.T) {
	g := NewGrader()

	testCases := []struct {
		name     string
		prior    []models.QuizAttempt
		expected bool
	}{
		{"no prior attempts", nil, true},
		{"one imperfect attempt", []models.QuizAttempt{{AttemptNumber: 1, CanReAttempt: true}}, true},
		{"perfect first attempt", []models.QuizAttempt{{AttemptNumber: 1, RawScore: 100, CanReAttempt: false}}, false},
		{"re-attempt already used", []models.QuizAttempt{
			{AttemptNumber: 1, CanReAttempt: true},
			{AttemptNumber: 2, CanReAttempt: false},
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.CanAttempt(tc.prior); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestGradeExam(t *testing.T) {
	g := NewGrader()
	questions := []models.ExamQuestion{
		{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0},
		{Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
		{Text: "q3", Options: []string{"a", "b"}, CorrectAnswer: 1},
	}

	score, results, err := g.GradeExam(questions, []*int{intPtr(0), intPtr(1), intPtr(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 67 {
		t.Errorf("expected score 67, got %d", score)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if _, _, err := g.GradeExam(nil, nil); err != ErrNoQuestions {
		t.Errorf("expected ErrNoQuestions for empty paper, got %v", err)
	}
}
