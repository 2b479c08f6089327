package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/middleware"
	"learning-service/internal/models"
	"learning-service/internal/repository"
	"learning-service/internal/service"
)

type fakeCertStore struct {
	byID map[primitive.ObjectID]*models.Certificate
}

func (f *fakeCertStore) Create(_ context.Context, cert *models.Certificate) error {
	cp := *cert
	f.byID[cert.ID] = &cp
	return nil
}

func (f *fakeCertStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCertStore) FindByNumber(_ context.Context, number string) (*models.Certificate, error) {
	for _, c := range f.byID {
		if c.CertificateNumber == number {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCertStore) FindByStudent(_ context.Context, studentID primitive.ObjectID) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, c := range f.byID {
		if c.StudentID == studentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertStore) Replace(_ context.Context, cert *models.Certificate) error {
	if _, ok := f.byID[cert.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *cert
	f.byID[cert.ID] = &cp
	return nil
}

// asUser stands in for the auth middleware and stores the user on the
// request context.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, user.ID)
		c.Set(middleware.ContextUserKey, user)
		c.Set(middleware.ContextRoleKey, user.Role)
		c.Next()
	}
}

func newCertificateFixture(t *testing.T) (*CertificateHandler, *fakeCertStore, *models.Certificate) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := &fakeCertStore{byID: map[primitive.ObjectID]*models.Certificate{}}
	cert := &models.Certificate{
		ID:                primitive.NewObjectID(),
		StudentID:         primitive.NewObjectID(),
		CertificateNumber: "CERT-TEST-0001",
		Percentage:        90,
		Grade:             "A",
		Status:            models.CertificateSent,
		IssuedAt:          time.Now(),
	}
	require.NoError(t, store.Create(context.Background(), cert))
	svc := service.NewCertificateService(store, event.NewMockPublisher())
	return NewCertificateHandler(svc), store, cert
}

func getCertificate(h *CertificateHandler, as *models.User, id primitive.ObjectID) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/certificate/:id", asUser(as), h.Get)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/certificate/"+id.Hex(), nil)
	r.ServeHTTP(w, req)
	return w
}

func downloadCertificate(h *CertificateHandler, as *models.User, id primitive.ObjectID) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/certificate/:id/download", asUser(as), h.Download)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/certificate/"+id.Hex()+"/download", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetCertificateOwnerAndAdminAllowed(t *testing.T) {
	h, _, cert := newCertificateFixture(t)

	owner := &models.User{ID: cert.StudentID, Role: models.RoleStudent}
	w := getCertificate(h, owner, cert.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	w = getCertificate(h, admin, cert.ID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCertificateForbiddenForOtherStudent(t *testing.T) {
	h, _, cert := newCertificateFixture(t)

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	w := getCertificate(h, stranger, cert.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestDownloadCertificateForbiddenForOtherStudent(t *testing.T) {
	h, store, cert := newCertificateFixture(t)

	stranger := &models.User{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	w := downloadCertificate(h, stranger, cert.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, err := store.FindByID(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CertificateSent, stored.Status, "a rejected download must not advance the lifecycle")
	assert.True(t, stored.DownloadedAt.IsZero())
}

func TestDownloadCertificateOwnerMarksDownloaded(t *testing.T) {
	h, store, cert := newCertificateFixture(t)

	owner := &models.User{ID: cert.StudentID, Role: models.RoleStudent}
	w := downloadCertificate(h, owner, cert.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := store.FindByID(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CertificateDownloaded, stored.Status)
}
