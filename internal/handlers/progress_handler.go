package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/middleware"
	"learning-service/internal/service"
)

type ProgressHandler struct {
	progress *service.ProgressService
}

func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) userAndModule(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	moduleID, ok := objectIDParam(c, "moduleId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, moduleID, true
}

func (h *ProgressHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	progress, err := h.progress.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) Get(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	progress, err := h.progress.Get(c.Request.Context(), userID, moduleID)
	if err != nil {
		if errors.Is(err, service.ErrProgressNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) Update(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	var in service.ProgressUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	progress, err := h.progress.Update(c.Request.Context(), userID, moduleID, in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) CompleteTopic(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	var in service.CompletedTopicInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	progress, err := h.progress.CompleteTopic(c.Request.Context(), userID, moduleID, in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) AddBookmark(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	var in service.BookmarkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	progress, err := h.progress.AddBookmark(c.Request.Context(), userID, moduleID, in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) RemoveBookmark(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	progress, err := h.progress.RemoveBookmark(c.Request.Context(), userID, moduleID, c.Param("topicId"))
	if err != nil {
		if errors.Is(err, service.ErrProgressNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) AddNote(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	var in service.NoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	progress, err := h.progress.AddNote(c.Request.Context(), userID, moduleID, in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}

func (h *ProgressHandler) RemoveNote(c *gin.Context) {
	userID, moduleID, ok := h.userAndModule(c)
	if !ok {
		return
	}
	progress, err := h.progress.RemoveNote(c.Request.Context(), userID, moduleID, c.Param("noteId"))
	if err != nil {
		if errors.Is(err, service.ErrProgressNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, progress)
}
