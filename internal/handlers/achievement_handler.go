package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/middleware"
	"learning-service/internal/models"
	"learning-service/internal/service"
)

type AchievementHandler struct {
	achievements *service.AchievementService
}

func NewAchievementHandler(achievements *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

func (h *AchievementHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	achievements, err := h.achievements.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, achievements)
}

func (h *AchievementHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	achievement, err := h.achievements.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, achievement)
}

func (h *AchievementHandler) Create(c *gin.Context) {
	var achievement models.Achievement
	if err := c.ShouldBindJSON(&achievement); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.achievements.Create(c.Request.Context(), &achievement); err != nil {
		respondBadRequest(c, err)
		return
	}
	respondCreated(c, achievement, "achievement created")
}

func (h *AchievementHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var update models.Achievement
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}
	achievement, err := h.achievements.Update(c.Request.Context(), id, &update)
	if err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondBadRequest(c, err)
		return
	}
	respondOK(c, achievement)
}

func (h *AchievementHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.achievements.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondMessage(c, "achievement deleted")
}

type awardInput struct {
	UserID string `json:"user_id" binding:"required"`
}

// Award grants an achievement to a user. Granting twice is a conflict, not a
// second award.
func (h *AchievementHandler) Award(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var in awardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		respondBadRequest(c, errors.New("invalid user_id"))
		return
	}

	award, err := h.achievements.Award(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAchievementNotFound):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, service.ErrAchievementInactive):
			respondError(c, http.StatusForbidden, err)
		case errors.Is(err, service.ErrAlreadyAwarded):
			respondError(c, http.StatusConflict, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	respondCreated(c, award, "achievement awarded")
}

// MyAwards lists the caller's earned achievements.
func (h *AchievementHandler) MyAwards(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	awards, err := h.achievements.ListAwards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, awards)
}
