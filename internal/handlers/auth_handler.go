package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-service/internal/middleware"
	"learning-service/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
	jwt  *service.JWTService
}

func NewAuthHandler(auth *service.AuthService, jwt *service.JWTService) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(h.jwt.Expiry().Seconds()), "/", "", false, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, err)
		case errors.Is(err, service.ErrPasswordTooShort), errors.Is(err, service.ErrInvalidRole):
			respondBadRequest(c, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	h.setTokenCookie(c, token)
	respondCreated(c, gin.H{"user": user, "token": token}, "registration successful")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, err)
		case errors.Is(err, service.ErrAccountDeactivated):
			respondError(c, http.StatusForbidden, err)
		default:
			respondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	h.setTokenCookie(c, token)
	respondOK(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	respondMessage(c, "logged out")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	respondOK(c, user)
}

// Deactivate soft-deletes the caller's own account.
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	if err := h.auth.Deactivate(c.Request.Context(), userID); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.SetCookie("token", "", -1, "/", "", false, true)
	respondMessage(c, "account deactivated")
}
