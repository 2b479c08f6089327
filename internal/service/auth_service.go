package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"learning-service/internal/event"
	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("invalid role")
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthService struct {
	users     *repository.UserRepository
	tokens    *JWTService
	publisher event.Publisher
}

func NewAuthService(users *repository.UserRepository, tokens *JWTService, publisher event.Publisher) *AuthService {
	return &AuthService{users: users, tokens: tokens, publisher: publisher}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if len(in.Password) < 8 {
		return nil, "", ErrPasswordTooShort
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.IsValidRole(role) {
		return nil, "", ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		IsActive:     true,
		Progress:     models.ProgressSummary{Badges: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	if err := s.publisher.Publish(event.UserRegistered, map[string]any{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"role":   user.Role,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}

	metrics.AuthAttempts.WithLabelValues("register").Inc()
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrAccountDeactivated
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		log.Printf("Failed to record last login for %s: %v", user.ID.Hex(), err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	return s.users.Deactivate(ctx, userID)
}
