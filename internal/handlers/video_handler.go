package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/service"
)

type VideoHandler struct {
	videos *service.VideoService
}

func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

func (h *VideoHandler) List(c *gin.Context) {
	var moduleID primitive.ObjectID
	if raw := c.Query("module"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondBadRequest(c, errors.New("invalid module id"))
			return
		}
		moduleID = id
	}
	videos, err := h.videos.List(c.Request.Context(), moduleID, listOptions(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, videos)
}

func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	h.videos.RecordView(c.Request.Context(), id)
	respondOK(c, video)
}

// Stream serves the stored file; gin handles range requests for seeking.
func (h *VideoHandler) Stream(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Type", video.MimeType)
	c.File(video.FilePath)
}

// Upload accepts a multipart form with a "video" file plus metadata fields.
func (h *VideoHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("video")
	if err != nil {
		respondBadRequest(c, service.ErrVideoFileMissing)
		return
	}

	in := service.VideoUploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		TopicID:     c.PostForm("topic_id"),
	}
	if raw := c.PostForm("module_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondBadRequest(c, errors.New("invalid module_id"))
			return
		}
		in.ModuleID = id
	}
	if raw := c.PostForm("duration"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			in.Duration = d
		}
	}

	video, err := h.videos.Upload(c.Request.Context(), header, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, err)
		case errors.Is(err, service.ErrNotAVideo):
			respondError(c, http.StatusUnsupportedMediaType, err)
		default:
			respondBadRequest(c, err)
		}
		return
	}
	respondCreated(c, video, "video uploaded")
}

type videoUpdateInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var in videoUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	video, err := h.videos.Update(c.Request.Context(), id, in.Title, in.Description, in.Duration)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, video)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "video deleted")
}
