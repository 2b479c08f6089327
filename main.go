package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learning-service/internal/config"
	mongodb "learning-service/internal/database/mongo"
	redisdb "learning-service/internal/database/redis"
	"learning-service/internal/event"
	"learning-service/internal/handlers"
	"learning-service/internal/middleware"
	"learning-service/internal/models"
	"learning-service/internal/repository"
	"learning-service/internal/service"
	"learning-service/pkg/discovery"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.ServiceConfig
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if err := mongodb.Connect(cfg.MongoDB); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Disconnect()
	db := mongodb.Database

	redisClient := redisdb.Connect(cfg.Redis)
	defer redisdb.Disconnect()

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()

	// repositories
	users := repository.NewUserRepository(db)
	modules := repository.NewModuleRepository(db)
	categories := repository.NewCategoryRepository(db)
	quizzes := repository.NewQuizRepository(db)
	attempts := repository.NewAttemptRepository(db)
	progress := repository.NewProgressRepository(db)
	achievements := repository.NewAchievementRepository(db)
	certificates := repository.NewCertificateRepository(db)
	exams := repository.NewExamRepository(db)
	examQuestions := repository.NewExamQuestionRepository(db)
	examAttempts := repository.NewExamAttemptRepository(db)
	videos := repository.NewVideoRepository(db)

	ensureIndexes(users, attempts, progress, achievements, certificates)

	var counters repository.CounterStore
	if redisClient != nil {
		counters = repository.NewRedisCounterStore(redisClient)
	} else {
		counters = repository.NewMemoryCounterStore()
	}

	// services
	jwtService := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := service.NewAuthService(users, jwtService, publisher)
	quizService := service.NewQuizService(quizzes, attempts, progress, users, publisher)
	contentService := service.NewContentService(modules, quizzes, categories)
	progressService := service.NewProgressService(progress, modules, users, publisher)
	achievementService := service.NewAchievementService(achievements, users, publisher)
	certificateService := service.NewCertificateService(certificates, publisher)
	examService := service.NewExamService(exams, examQuestions, examAttempts, certificateService, publisher)
	videoService := service.NewVideoService(videos, cfg.Upload.VideoDir, cfg.Upload.MaxVideoSize)

	// handlers
	authHandler := handlers.NewAuthHandler(authService, jwtService)
	quizHandler := handlers.NewQuizHandler(quizService)
	contentHandler := handlers.NewContentHandler(contentService)
	progressHandler := handlers.NewProgressHandler(progressService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	certificateHandler := handlers.NewCertificateHandler(certificateService)
	examHandler := handlers.NewExamHandler(examService)
	videoHandler := handlers.NewVideoHandler(videoService)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.Server.ServiceName})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.Auth(jwtService, users)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	teacherOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	authLimit := middleware.RateLimit(counters, int64(cfg.RateLimit.AuthMaxAttempts), cfg.RateLimit.AuthWindow)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimit, authHandler.Register)
			auth.POST("/login", authLimit, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.DELETE("/me", authRequired, authHandler.Deactivate)
		}

		content := api.Group("/content")
		{
			content.GET("/modules", contentHandler.ListModules)
			content.GET("/modules/:id", contentHandler.GetModule)
			content.GET("/categories", contentHandler.ListCategories)

			admin := content.Group("", authRequired, teacherOrAdmin)
			{
				admin.POST("/modules", contentHandler.CreateModule)
				admin.PUT("/modules/:id", contentHandler.UpdateModule)
				admin.DELETE("/modules/:id", contentHandler.DeleteModule)
				admin.GET("/quizzes", contentHandler.ListQuizzes)
				admin.GET("/quizzes/:id", contentHandler.GetQuiz)
				admin.POST("/quizzes", contentHandler.CreateQuiz)
				admin.PUT("/quizzes/:id", contentHandler.UpdateQuiz)
				admin.DELETE("/quizzes/:id", contentHandler.DeleteQuiz)
				admin.POST("/categories", contentHandler.CreateCategory)
				admin.PUT("/categories/:id", contentHandler.UpdateCategory)
				admin.DELETE("/categories/:id", contentHandler.DeleteCategory)
			}
		}

		quiz := api.Group("/quiz", authRequired)
		{
			quiz.GET("/:id", quizHandler.Get)
			quiz.POST("/:id/submit", quizHandler.Submit)
			quiz.GET("/:id/attempts", quizHandler.Attempts)
			quiz.GET("/history", quizHandler.History)
		}

		progressGroup := api.Group("/progress", authRequired)
		{
			progressGroup.GET("", progressHandler.List)
			progressGroup.GET("/:moduleId", progressHandler.Get)
			progressGroup.PUT("/:moduleId", progressHandler.Update)
			progressGroup.POST("/:moduleId/topics", progressHandler.CompleteTopic)
			progressGroup.POST("/:moduleId/bookmarks", progressHandler.AddBookmark)
			progressGroup.DELETE("/:moduleId/bookmarks/:topicId", progressHandler.RemoveBookmark)
			progressGroup.POST("/:moduleId/notes", progressHandler.AddNote)
			progressGroup.DELETE("/:moduleId/notes/:noteId", progressHandler.RemoveNote)
		}

		achievement := api.Group("/achievement")
		{
			achievement.GET("", achievementHandler.List)
			achievement.GET("/mine", authRequired, achievementHandler.MyAwards)
			achievement.GET("/:id", achievementHandler.Get)

			admin := achievement.Group("", authRequired, adminOnly)
			{
				admin.POST("", achievementHandler.Create)
				admin.PUT("/:id", achievementHandler.Update)
				admin.DELETE("/:id", achievementHandler.Delete)
				admin.POST("/:id/award", achievementHandler.Award)
			}
		}

		certificate := api.Group("/certificate")
		{
			certificate.GET("/verify/:number", certificateHandler.Verify)
			certificate.GET("/mine", authRequired, certificateHandler.Mine)
			certificate.GET("/:id", authRequired, certificateHandler.Get)
			certificate.POST("/:id/download", authRequired, certificateHandler.Download)

			admin := certificate.Group("", authRequired, adminOnly)
			{
				admin.POST("/:id/sent", certificateHandler.MarkSent)
				admin.POST("/:id/revoke", certificateHandler.Revoke)
			}
		}

		exam := api.Group("/exam", authRequired)
		{
			exam.GET("", examHandler.List)
			exam.GET("/attempts", examHandler.MyAttempts)
			exam.GET("/:id", examHandler.Get)
			exam.POST("/:id/start", examHandler.Start)
			exam.POST("/attempts/:attemptId/submit", examHandler.Submit)

			admin := exam.Group("", adminOnly)
			{
				admin.POST("", examHandler.Create)
				admin.PUT("/:id", examHandler.Update)
				admin.DELETE("/:id", examHandler.Delete)
				admin.POST("/questions", examHandler.CreateQuestion)
				admin.PUT("/questions/:id", examHandler.UpdateQuestion)
				admin.DELETE("/questions/:id", examHandler.DeleteQuestion)
			}
		}

		video := api.Group("/video")
		{
			video.GET("", videoHandler.List)
			video.GET("/:id", videoHandler.Get)
			video.GET("/:id/stream", videoHandler.Stream)

			admin := video.Group("", authRequired, teacherOrAdmin)
			{
				admin.POST("/upload", videoHandler.Upload)
				admin.PUT("/:id", videoHandler.Update)
				admin.DELETE("/:id", videoHandler.Delete)
			}
		}
	}

	registry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		log.Printf("Service discovery unavailable: %v", err)
	} else if err := registry.Register(); err != nil {
		log.Printf("Consul registration failed: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.Server.ServiceName, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	if registry != nil {
		registry.Deregister()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(indexers ...indexer) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, idx := range indexers {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Printf("Failed to ensure indexes: %v", err)
		}
	}
}
