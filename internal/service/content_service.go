package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var (
	ErrModuleNotFound   = errors.New("module not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type moduleStore interface {
	FindAll(ctx context.Context, filter repository.ModuleFilter, opts repository.ListOptions) ([]models.Module, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Replace(ctx context.Context, module *models.Module, snapshot models.ModuleVersion) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

type quizCatalogStore interface {
	FindAll(ctx context.Context, filter repository.QuizFilter, opts repository.ListOptions) ([]models.Quiz, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Replace(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type categoryStore interface {
	FindAll(ctx context.Context, activeOnly bool) ([]models.CategoryModule, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategoryModule, error)
	Create(ctx context.Context, category *models.CategoryModule) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ContentService owns the admin CRUD surface for modules, quizzes and
// categories plus the public read paths.
type ContentService struct {
	modules    moduleStore
	quizzes    quizCatalogStore
	categories categoryStore
}

func NewContentService(modules moduleStore, quizzes quizCatalogStore, categories categoryStore) *ContentService {
	return &ContentService{modules: modules, quizzes: quizzes, categories: categories}
}

// requireModule verifies a quiz's module reference resolves to a stored
// module before the quiz is saved.
func (s *ContentService) requireModule(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.modules.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrModuleNotFound
		}
		return err
	}
	return nil
}

func (s *ContentService) ListModules(ctx context.Context, filter repository.ModuleFilter, opts repository.ListOptions) ([]models.Module, error) {
	return s.modules.FindAll(ctx, filter, opts)
}

func (s *ContentService) GetModule(ctx context.Context, id primitive.ObjectID) (*models.Module, error) {
	module, err := s.modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	// view counting is best effort and never fails the read
	if err := s.modules.IncrementViews(ctx, id); err != nil {
		log.Printf("Failed to count view for module %s: %v", id.Hex(), err)
	}
	return module, nil
}

func (s *ContentService) CreateModule(ctx context.Context, module *models.Module) error {
	if err := module.Validate(); err != nil {
		return err
	}
	now := time.Now()
	module.ID = primitive.NewObjectID()
	module.Version = 1
	module.PreviousVersions = []models.ModuleVersion{}
	module.CreatedAt = now
	module.UpdatedAt = now
	return s.modules.Create(ctx, module)
}

// UpdateModule snapshots the stored version before applying the update, so
// every edit is recoverable from previous_versions.
func (s *ContentService) UpdateModule(ctx context.Context, id primitive.ObjectID, updated *models.Module) (*models.Module, error) {
	current, err := s.modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}

	now := time.Now()
	snapshot := current.Snapshot(now)

	current.Title = updated.Title
	current.Description = updated.Description
	current.ModuleType = updated.ModuleType
	current.CategoryID = updated.CategoryID
	current.AgeRange = updated.AgeRange
	current.Difficulty = updated.Difficulty
	current.Topics = updated.Topics
	current.Published = updated.Published
	current.UpdatedAt = now
	if err := current.Validate(); err != nil {
		return nil, err
	}

	if err := s.modules.Replace(ctx, current, snapshot); err != nil {
		return nil, err
	}
	return current, nil
}

// DeleteModule removes the module only. Quizzes, videos and progress keep
// their module_id references; readers treat a missing module as gone.
func (s *ContentService) DeleteModule(ctx context.Context, id primitive.ObjectID) error {
	if err := s.modules.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrModuleNotFound
		}
		return err
	}
	return nil
}

func (s *ContentService) ListQuizzes(ctx context.Context, filter repository.QuizFilter, opts repository.ListOptions) ([]models.Quiz, error) {
	return s.quizzes.FindAll(ctx, filter, opts)
}

func (s *ContentService) GetQuiz(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func (s *ContentService) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if err := s.requireModule(ctx, quiz.ModuleID); err != nil {
		return err
	}
	now := time.Now()
	quiz.ID = primitive.NewObjectID()
	quiz.Analytics = models.QuizAnalytics{}
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	return s.quizzes.Create(ctx, quiz)
}

func (s *ContentService) UpdateQuiz(ctx context.Context, id primitive.ObjectID, updated *models.Quiz) (*models.Quiz, error) {
	current, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	current.Title = updated.Title
	current.Level = updated.Level
	current.ModuleID = updated.ModuleID
	current.Questions = updated.Questions
	current.TimeLimit = updated.TimeLimit
	current.PassingScore = updated.PassingScore
	current.Published = updated.Published
	current.UpdatedAt = time.Now()
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireModule(ctx, current.ModuleID); err != nil {
		return nil, err
	}

	if err := s.quizzes.Replace(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *ContentService) DeleteQuiz(ctx context.Context, id primitive.ObjectID) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	return nil
}

func (s *ContentService) ListCategories(ctx context.Context, activeOnly bool) ([]models.CategoryModule, error) {
	return s.categories.FindAll(ctx, activeOnly)
}

func (s *ContentService) CreateCategory(ctx context.Context, category *models.CategoryModule) error {
	if err := category.Validate(); err != nil {
		return err
	}
	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	return s.categories.Create(ctx, category)
}

func (s *ContentService) UpdateCategory(ctx context.Context, id primitive.ObjectID, updated *models.CategoryModule) (*models.CategoryModule, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	err := s.categories.Update(ctx, id, bson.M{
		"name":        updated.Name,
		"description": updated.Description,
		"age_range":   updated.AgeRange,
		"order":       updated.Order,
		"is_active":   updated.IsActive,
		"updated_at":  time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return s.categories.FindByID(ctx, id)
}

func (s *ContentService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
