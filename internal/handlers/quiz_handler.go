package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-service/internal/grading"
	"learning-service/internal/middleware"
	"learning-service/internal/service"
)

type QuizHandler struct {
	quizzes *service.QuizService
}

func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Get returns a published quiz with its answer key stripped.
func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.GetForStudent(c.Request.Context(), quizID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, service.ErrQuizNotPublished):
			respondError(c, http.StatusBadRequest, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondOK(c, quiz)
}

func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	quizID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var in service.SubmitQuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	out, err := h.quizzes.Submit(c.Request.Context(), userID, quizID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, service.ErrQuizNotPublished):
			respondError(c, http.StatusBadRequest, err)
		case errors.Is(err, grading.ErrNoAttemptsLeft):
			respondError(c, http.StatusForbidden, err)
		case errors.Is(err, grading.ErrNoQuestions):
			respondError(c, http.StatusUnprocessableEntity, err)
		case errors.Is(err, service.ErrDuplicateSubmit):
			respondError(c, http.StatusConflict, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondOK(c, out)
}

// Attempts lists the caller's attempts at one quiz.
func (h *QuizHandler) Attempts(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	quizID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	attempts, canAttempt, err := h.quizzes.AttemptsFor(c.Request.Context(), userID, quizID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, gin.H{"attempts": attempts, "can_attempt": canAttempt})
}

// History lists every quiz attempt the caller has made.
func (h *QuizHandler) History(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	attempts, err := h.quizzes.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, attempts)
}
