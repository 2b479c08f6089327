package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/middleware"
	"learning-service/internal/models"
	"learning-service/internal/service"
)

type CertificateHandler struct {
	certificates *service.CertificateService
}

func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Mine lists the caller's certificates.
func (h *CertificateHandler) Mine(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	certificates, err := h.certificates.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, certificates)
}

// Get returns a certificate by id. Students only see their own; admins see
// any.
func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificates.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if !canAccessCertificate(c, cert) {
		respondError(c, http.StatusForbidden, errors.New("certificate belongs to another student"))
		return
	}
	respondOK(c, cert)
}

func canAccessCertificate(c *gin.Context, cert *models.Certificate) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return false
	}
	return user.Role == models.RoleAdmin || user.ID == cert.StudentID
}

// Verify is public: anyone holding a certificate number can check it.
func (h *CertificateHandler) Verify(c *gin.Context) {
	result, err := h.certificates.Verify(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondOK(c, result)
}

func (h *CertificateHandler) MarkSent(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	h.transition(c, id, h.certificates.MarkSent)
}

// Download marks the certificate downloaded and returns it. PDF rendering is
// handled by the frontend from the returned data. Same ownership rule as Get.
func (h *CertificateHandler) Download(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificates.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if !canAccessCertificate(c, cert) {
		respondError(c, http.StatusForbidden, errors.New("certificate belongs to another student"))
		return
	}
	h.transition(c, id, h.certificates.MarkDownloaded)
}

type revokeInput struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *CertificateHandler) Revoke(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	var in revokeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}
	cert, err := h.certificates.Revoke(c.Request.Context(), id, adminID, in.Reason)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		respondError(c, http.StatusConflict, err)
		return
	}
	respondOK(c, cert)
}

func (h *CertificateHandler) transition(c *gin.Context, id primitive.ObjectID, apply func(context.Context, primitive.ObjectID) (*models.Certificate, error)) {
	cert, err := apply(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			respondError(c, http.StatusNotFound, err)
			return
		}
		// invalid lifecycle transitions surface as conflicts
		respondError(c, http.StatusConflict, err)
		return
	}
	respondOK(c, cert)
}
