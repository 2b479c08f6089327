package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var ErrCertificateNotFound = errors.New("certificate not found")

// numberRetries bounds the retry loop when a generated certificate number
// collides with an existing one.
const numberRetries = 3

type VerificationResult struct {
	Valid       bool                `json:"valid"`
	Reason      string              `json:"reason,omitempty"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

type certificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error)
	FindByNumber(ctx context.Context, number string) (*models.Certificate, error)
	FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Certificate, error)
	Replace(ctx context.Context, cert *models.Certificate) error
}

type CertificateService struct {
	certificates certificateStore
	publisher    event.Publisher
	now          func() time.Time
}

func NewCertificateService(certificates certificateStore, publisher event.Publisher) *CertificateService {
	return &CertificateService{certificates: certificates, publisher: publisher, now: time.Now}
}

// Issue creates a certificate for a passed exam attempt. Certificate numbers
// are timestamp-based with a random suffix; on the rare unique-index
// collision a fresh number is generated and the insert retried.
func (s *CertificateService) Issue(ctx context.Context, studentID primitive.ObjectID, exam *models.Exam, attempt *models.ExamAttempt) (*models.Certificate, error) {
	now := s.now()
	cert := &models.Certificate{
		ID:            primitive.NewObjectID(),
		StudentID:     studentID,
		ExamID:        exam.ID,
		ExamAttemptID: attempt.ID,
		Percentage:    float64(attempt.RawScore),
		Grade:         models.GradeForPercentage(float64(attempt.RawScore)),
		Status:        models.CertificateGenerated,
		IssuedAt:      now,
	}
	if exam.ValidityMonths > 0 {
		cert.ExpiryDate = now.AddDate(0, exam.ValidityMonths, 0)
	}

	var err error
	for i := 0; i < numberRetries; i++ {
		cert.CertificateNumber = models.NewCertificateNumber(now)
		err = s.certificates.Create(ctx, cert)
		if !errors.Is(err, repository.ErrNumberCollision) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(event.CertificateGenerated, map[string]any{
		"studentId":         studentID.Hex(),
		"examId":            exam.ID.Hex(),
		"certificateNumber": cert.CertificateNumber,
		"grade":             cert.Grade,
	}); err != nil {
		log.Printf("Failed to publish certificate.generated event: %v", err)
	}
	metrics.CertificatesIssued.Inc()
	return cert, nil
}

func (s *CertificateService) Get(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	cert, err := s.certificates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

func (s *CertificateService) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Certificate, error) {
	return s.certificates.FindByStudent(ctx, studentID)
}

// Verify is the public lookup by certificate number. It reports revoked and
// expired certificates as invalid with a reason rather than an error.
func (s *CertificateService) Verify(ctx context.Context, number string) (*VerificationResult, error) {
	cert, err := s.certificates.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &VerificationResult{Valid: false, Reason: "certificate not found"}, nil
		}
		return nil, err
	}
	if cert.Status == models.CertificateRevoked {
		return &VerificationResult{Valid: false, Reason: "certificate has been revoked", Certificate: cert}, nil
	}
	if cert.IsExpired(s.now()) {
		return &VerificationResult{Valid: false, Reason: "certificate has expired", Certificate: cert}, nil
	}
	return &VerificationResult{Valid: true, Certificate: cert}, nil
}

func (s *CertificateService) MarkSent(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	return s.transition(ctx, id, func(cert *models.Certificate) error {
		return cert.MarkSent(s.now())
	})
}

func (s *CertificateService) MarkDownloaded(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	return s.transition(ctx, id, func(cert *models.Certificate) error {
		return cert.MarkDownloaded(s.now())
	})
}

func (s *CertificateService) Revoke(ctx context.Context, id primitive.ObjectID, revokedBy primitive.ObjectID, reason string) (*models.Certificate, error) {
	cert, err := s.transition(ctx, id, func(cert *models.Certificate) error {
		return cert.Revoke(reason, revokedBy, s.now())
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(event.CertificateRevoked, map[string]any{
		"certificateNumber": cert.CertificateNumber,
		"reason":            reason,
	}); err != nil {
		log.Printf("Failed to publish certificate.revoked event: %v", err)
	}
	return cert, nil
}

func (s *CertificateService) transition(ctx context.Context, id primitive.ObjectID, apply func(*models.Certificate) error) (*models.Certificate, error) {
	cert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(cert); err != nil {
		return nil, err
	}
	if err := s.certificates.Replace(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}
