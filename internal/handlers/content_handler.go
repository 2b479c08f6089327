package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/models"
	"learning-service/internal/repository"
	"learning-service/internal/service"
)

// ContentHandler serves the public catalog reads and the admin CRUD surface
// for modules, quizzes and categories.
type ContentHandler struct {
	content *service.ContentService
}

func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) ListModules(c *gin.Context) {
	filter := repositoryModuleFilter(c)
	modules, err := h.content.ListModules(c.Request.Context(), filter, listOptions(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, modules)
}

func (h *ContentHandler) GetModule(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	module, err := h.content.GetModule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrModuleNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, module)
}

func (h *ContentHandler) CreateModule(c *gin.Context) {
	var module models.Module
	if err := c.ShouldBindJSON(&module); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.content.CreateModule(c.Request.Context(), &module); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, module, "module created")
}

func (h *ContentHandler) UpdateModule(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.Module
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	module, err := h.content.UpdateModule(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, service.ErrModuleNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondBadRequest(c, err)
		return
	}
	respondOK(c, module)
}

func (h *ContentHandler) DeleteModule(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteModule(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrModuleNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "module deleted")
}

func (h *ContentHandler) ListQuizzes(c *gin.Context) {
	filter := repositoryQuizFilter(c)
	quizzes, err := h.content.ListQuizzes(c.Request.Context(), filter, listOptions(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, quizzes)
}

// GetQuiz is the admin read, answer key included.
func (h *ContentHandler) GetQuiz(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.content.GetQuiz(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, quiz)
}

func (h *ContentHandler) CreateQuiz(c *gin.Context) {
	var quiz models.Quiz
	if err := c.ShouldBindJSON(&quiz); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.content.CreateQuiz(c.Request.Context(), &quiz); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, quiz, "quiz created")
}

func (h *ContentHandler) UpdateQuiz(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.Quiz
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	quiz, err := h.content.UpdateQuiz(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondBadRequest(c, err)
		return
	}
	respondOK(c, quiz)
}

func (h *ContentHandler) DeleteQuiz(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteQuiz(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "quiz deleted")
}

func (h *ContentHandler) ListCategories(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	categories, err := h.content.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, categories)
}

func (h *ContentHandler) CreateCategory(c *gin.Context) {
	var category models.CategoryModule
	if err := c.ShouldBindJSON(&category); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.content.CreateCategory(c.Request.Context(), &category); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, category, "category created")
}

func (h *ContentHandler) UpdateCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.CategoryModule
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := h.content.UpdateCategory(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondBadRequest(c, err)
		return
	}
	respondOK(c, category)
}

func (h *ContentHandler) DeleteCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.content.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "category deleted")
}

func repositoryModuleFilter(c *gin.Context) repository.ModuleFilter {
	return repository.ModuleFilter{
		ModuleType:    c.Query("type"),
		Difficulty:    c.Query("difficulty"),
		CategoryID:    c.Query("category"),
		PublishedOnly: c.Query("all") != "true",
	}
}

func repositoryQuizFilter(c *gin.Context) repository.QuizFilter {
	filter := repository.QuizFilter{
		Level:         c.Query("level"),
		PublishedOnly: c.Query("all") != "true",
	}
	if raw := c.Query("module"); raw != "" {
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			filter.ModuleID = id
		}
	}
	return filter
}
