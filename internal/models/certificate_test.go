package models

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGradeForPercentage(t *testing.T) {
	testCases := []struct {
		percentage float64
		expected   string
	}{
		{100, "A+"},
		{95, "A+"},
		{94.9, "A"},
		{90, "A"},
		{89, "B+"},
		{85, "B+"},
		{84, "B"},
		{80, "B"},
		{79, "C+"},
		{75, "C+"},
		{74, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tc := range testCases {
		if got := GradeForPercentage(tc.percentage); got != tc.expected {
			t.Errorf("GradeForPercentage(%v) = %q, expected %q", tc.percentage, got, tc.expected)
		}
	}
}

func TestCertificateNumberFormat(t *testing.T) {
	now := time.Now()
	number := NewCertificateNumber(now)

	if !strings.HasPrefix(number, "CERT-") {
		t.Errorf("certificate number %q should start with CERT-", number)
	}
	body := strings.TrimPrefix(number, "CERT-")
	if body != strings.ToUpper(body) {
		t.Errorf("certificate number %q should be uppercased", number)
	}
	if len(body) < 10 {
		t.Errorf("certificate number body %q too short", body)
	}
}

func TestCertificateLifecycle(t *testing.T) {
	now := time.Now()
	cert := &Certificate{Status: CertificateGenerated, CertificateNumber: "CERT-TEST"}

	if err := cert.MarkDownloaded(now); err == nil {
		t.Error("downloaded before sent must be rejected")
	}

	if err := cert.MarkSent(now); err != nil {
		t.Fatalf("unexpected error marking sent: %v", err)
	}
	if cert.Status != CertificateSent || cert.SentAt.IsZero() {
		t.Errorf("expected sent status with timestamp, got %q", cert.Status)
	}

	if err := cert.MarkSent(now); err == nil {
		t.Error("marking sent twice must be rejected")
	}

	if err := cert.MarkDownloaded(now); err != nil {
		t.Fatalf("unexpected error marking downloaded: %v", err)
	}
	if cert.Status != CertificateDownloaded {
		t.Errorf("expected downloaded status, got %q", cert.Status)
	}
}

func TestCertificateRevocationIsTerminal(t *testing.T) {
	now := time.Now()
	admin := primitive.NewObjectID()

	for _, from := range []string{CertificateGenerated, CertificateSent, CertificateDownloaded} {
		cert := &Certificate{Status: from, CertificateNumber: "CERT-TEST"}
		if err := cert.Revoke("integrity violation", admin, now); err != nil {
			t.Errorf("revoke from %q should succeed, got %v", from, err)
		}
		if cert.Status != CertificateRevoked || cert.RevokedBy != admin || cert.RevocationReason == "" {
			t.Errorf("revocation state not fully recorded from %q", from)
		}

		if err := cert.Revoke("again", admin, now); err == nil {
			t.Error("revoking an already revoked certificate must fail")
		}
		if err := cert.MarkSent(now); err == nil {
			t.Error("no transition out of revoked is allowed")
		}
	}
}

func TestCertificateExpiry(t *testing.T) {
	now := time.Now()

	cert := &Certificate{Status: CertificateGenerated}
	if cert.IsExpired(now) {
		t.Error("certificate without expiry date never expires")
	}

	cert.ExpiryDate = now.Add(-time.Hour)
	if !cert.IsExpired(now) {
		t.Error("certificate past expiry date should be expired")
	}

	cert.ExpiryDate = now.Add(time.Hour)
	if cert.IsExpired(now) {
		t.Error("certificate before expiry date should not be expired")
	}
}
