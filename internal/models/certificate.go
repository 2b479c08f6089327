package models

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CertificateGenerated  = "generated"
	CertificateSent       = "sent"
	CertificateDownloaded = "downloaded"
	CertificateRevoked    = "revoked"
)

type Certificate struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID         primitive.ObjectID `bson:"student_id" json:"student_id"`
	ExamID            primitive.ObjectID `bson:"exam_id" json:"exam_id"`
	ExamAttemptID     primitive.ObjectID `bson:"exam_attempt_id" json:"exam_attempt_id"`
	CertificateNumber string             `bson:"certificate_number" json:"certificate_number"`
	Percentage        float64            `bson:"percentage" json:"percentage"`
	Grade             string             `bson:"grade" json:"grade"`
	Status            string             `bson:"status" json:"status"`
	IssuedAt          time.Time          `bson:"issued_at" json:"issued_at"`
	ExpiryDate        time.Time          `bson:"expiry_date,omitempty" json:"expiry_date"`
	SentAt            time.Time          `bson:"sent_at,omitempty" json:"sent_at"`
	DownloadedAt      time.Time          `bson:"downloaded_at,omitempty" json:"downloaded_at"`
	RevokedAt         time.Time          `bson:"revoked_at,omitempty" json:"revoked_at"`
	RevokedBy         primitive.ObjectID `bson:"revoked_by,omitempty" json:"revoked_by,omitempty"`
	RevocationReason  string             `bson:"revocation_reason,omitempty" json:"revocation_reason,omitempty"`
}

// NewCertificateNumber builds a globally unique number from the current
// timestamp plus a random suffix, base36 uppercased. Uniqueness is backed
// by an index on the collection.
func NewCertificateNumber(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strconv.FormatInt(rand.Int63n(36*36*36*36*36*36), 36)
	for len(suffix) < 6 {
		suffix = "0" + suffix
	}
	return "CERT-" + strings.ToUpper(ts+suffix)
}

// GradeForPercentage maps a percentage to a letter grade. Breakpoints are
// inclusive on the lower bound of each band.
func GradeForPercentage(percentage float64) string {
	switch {
	case percentage >= 95:
		return "A+"
	case percentage >= 90:
		return "A"
	case percentage >= 85:
		return "B+"
	case percentage >= 80:
		return "B"
	case percentage >= 75:
		return "C+"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

func (c *Certificate) IsExpired(now time.Time) bool {
	return !c.ExpiryDate.IsZero() && now.After(c.ExpiryDate)
}

// MarkSent moves generated -> sent.
func (c *Certificate) MarkSent(now time.Time) error {
	if c.Status != CertificateGenerated {
		return fmt.Errorf("cannot mark certificate %s as sent from status %q", c.CertificateNumber, c.Status)
	}
	c.Status = CertificateSent
	c.SentAt = now
	return nil
}

// MarkDownloaded moves sent -> downloaded.
func (c *Certificate) MarkDownloaded(now time.Time) error {
	if c.Status != CertificateSent {
		return fmt.Errorf("cannot mark certificate %s as downloaded from status %q", c.CertificateNumber, c.Status)
	}
	c.Status = CertificateDownloaded
	c.DownloadedAt = now
	return nil
}

// Revoke is allowed from any non-revoked state and is terminal.
func (c *Certificate) Revoke(reason string, revokedBy primitive.ObjectID, now time.Time) error {
	if c.Status == CertificateRevoked {
		return fmt.Errorf("certificate %s is already revoked", c.CertificateNumber)
	}
	c.Status = CertificateRevoked
	c.RevocationReason = reason
	c.RevokedBy = revokedBy
	c.RevokedAt = now
	return nil
}
