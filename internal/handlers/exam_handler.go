package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-service/internal/grading"
	"learning-service/internal/middleware"
	"learning-service/internal/models"
	"learning-service/internal/service"
)

type ExamHandler struct {
	exams *service.ExamService
}

func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

func (h *ExamHandler) List(c *gin.Context) {
	publishedOnly := c.Query("all") != "true"
	exams, err := h.exams.List(c.Request.Context(), publishedOnly)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, exams)
}

func (h *ExamHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	exam, err := h.exams.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, exam)
}

func (h *ExamHandler) Create(c *gin.Context) {
	var exam models.Exam
	if err := c.ShouldBindJSON(&exam); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.exams.Create(c.Request.Context(), &exam); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, exam, "exam created")
}

func (h *ExamHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.Exam
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondBadRequest(c, err)
		return
	}
	respondOK(c, exam)
}

func (h *ExamHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.exams.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "exam deleted")
}

func (h *ExamHandler) CreateQuestion(c *gin.Context) {
	var question models.ExamQuestion
	if err := c.ShouldBindJSON(&question); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.exams.CreateQuestion(c.Request.Context(), &question); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, question, "question created")
}

func (h *ExamHandler) UpdateQuestion(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.ExamQuestion
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	question, err := h.exams.UpdateQuestion(c.Request.Context(), id, &update)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	respondOK(c, question)
}

func (h *ExamHandler) DeleteQuestion(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.exams.DeleteQuestion(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "question deleted")
}

// Start opens an attempt with a freshly generated paper.
func (h *ExamHandler) Start(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	examID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.exams.Start(c.Request.Context(), userID, examID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, service.ErrExamNotPublished):
			respondError(c, http.StatusForbidden, err)
		case errors.Is(err, service.ErrNotEnoughQuestions):
			respondError(c, http.StatusUnprocessableEntity, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondOK(c, out)
}

func (h *ExamHandler) Submit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	attemptID, ok := objectIDParam(c, "attemptId")
	if !ok {
		return
	}
	var in service.SubmitExamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	out, err := h.exams.Submit(c.Request.Context(), userID, attemptID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamAttemptNotFound):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, service.ErrExamAttemptForbidden):
			respondError(c, http.StatusForbidden, err)
		case errors.Is(err, service.ErrExamAttemptFinished):
			respondError(c, http.StatusConflict, err)
		case errors.Is(err, service.ErrExamPaperChanged):
			respondError(c, http.StatusConflict, err)
		case errors.Is(err, grading.ErrNoQuestions):
			respondError(c, http.StatusUnprocessableEntity, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondOK(c, out)
}

// MyAttempts lists the caller's exam attempts.
func (h *ExamHandler) MyAttempts(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	attempts, err := h.exams.AttemptsFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, attempts)
}
