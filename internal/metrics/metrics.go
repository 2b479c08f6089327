package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_auth_attempts_total",
		Help: "Authentication attempts by outcome",
	}, []string{"outcome"})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "learning_rate_limit_rejections_total",
		Help: "Requests rejected by the auth rate limiter",
	})

	QuizSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_quiz_submissions_total",
		Help: "Quiz submissions by result",
	}, []string{"result"})

	ExamSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_exam_submissions_total",
		Help: "Exam submissions by result",
	}, []string{"result"})

	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "learning_certificates_issued_total",
		Help: "Certificates generated for passed exams",
	})

	AchievementsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "learning_achievements_awarded_total",
		Help: "Achievements awarded to users",
	})

	VideoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learning_video_uploads_total",
		Help: "Video upload attempts by outcome",
	}, []string{"outcome"})
)
