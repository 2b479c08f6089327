package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/models"
	"learning-service/internal/repository"
)

type fakeModuleStore struct {
	modules     map[primitive.ObjectID]*models.Module
	completions map[primitive.ObjectID]float64
	views       map[primitive.ObjectID]int
}

func newFakeModuleStore() *fakeModuleStore {
	return &fakeModuleStore{
		modules:     map[primitive.ObjectID]*models.Module{},
		completions: map[primitive.ObjectID]float64{},
		views:       map[primitive.ObjectID]int{},
	}
}

func (f *fakeModuleStore) FindAll(_ context.Context, _ repository.ModuleFilter, _ repository.ListOptions) ([]models.Module, error) {
	var out []models.Module
	for _, m := range f.modules {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeModuleStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeModuleStore) Create(_ context.Context, module *models.Module) error {
	f.modules[module.ID] = module
	return nil
}

func (f *fakeModuleStore) Replace(_ context.Context, module *models.Module, snapshot models.ModuleVersion) error {
	if _, ok := f.modules[module.ID]; !ok {
		return repository.ErrNotFound
	}
	module.PreviousVersions = append(module.PreviousVersions, snapshot)
	module.Version++
	f.modules[module.ID] = module
	return nil
}

func (f *fakeModuleStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.modules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.modules, id)
	return nil
}

func (f *fakeModuleStore) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	f.views[id]++
	return nil
}

func (f *fakeModuleStore) RecordCompletion(_ context.Context, id primitive.ObjectID, score float64) error {
	f.completions[id] = score
	return nil
}

type fakeQuizCatalog struct {
	quizzes map[primitive.ObjectID]*models.Quiz
}

func newFakeQuizCatalog() *fakeQuizCatalog {
	return &fakeQuizCatalog{quizzes: map[primitive.ObjectID]*models.Quiz{}}
}

func (f *fakeQuizCatalog) FindAll(_ context.Context, _ repository.QuizFilter, _ repository.ListOptions) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeQuizCatalog) FindByID(_ context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuizCatalog) Create(_ context.Context, quiz *models.Quiz) error {
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizCatalog) Replace(_ context.Context, quiz *models.Quiz) error {
	if _, ok := f.quizzes[quiz.ID]; !ok {
		return repository.ErrNotFound
	}
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizCatalog) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeCategoryStore struct {
	categories map[primitive.ObjectID]*models.CategoryModule
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[primitive.ObjectID]*models.CategoryModule{}}
}

func (f *fakeCategoryStore) FindAll(_ context.Context, activeOnly bool) ([]models.CategoryModule, error) {
	var out []models.CategoryModule
	for _, c := range f.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.CategoryModule, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) Create(_ context.Context, category *models.CategoryModule) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryStore) Update(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	if _, ok := f.categories[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeCategoryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func seedModule(modules *fakeModuleStore) *models.Module {
	module := &models.Module{
		ID:          primitive.NewObjectID(),
		Title:       "Fractions",
		Description: "Working with fractions",
		Version:     1,
	}
	modules.modules[module.ID] = module
	return module
}

func validQuiz(moduleID primitive.ObjectID) *models.Quiz {
	return &models.Quiz{
		Title:    "Fractions check",
		ModuleID: moduleID,
		Questions: []models.QuizQuestion{
			{Text: "1/2 + 1/2?", Options: []string{"1", "2"}, CorrectAnswer: 0},
		},
		PassingScore: 70,
		Published:    true,
	}
}

func newTestContentService() (*ContentService, *fakeModuleStore, *fakeQuizCatalog) {
	modules := newFakeModuleStore()
	quizzes := newFakeQuizCatalog()
	return NewContentService(modules, quizzes, newFakeCategoryStore()), modules, quizzes
}

func TestCreateQuizResolvesModule(t *testing.T) {
	svc, modules, quizzes := newTestContentService()
	module := seedModule(modules)

	quiz := validQuiz(module.ID)
	require.NoError(t, svc.CreateQuiz(context.Background(), quiz))
	assert.Len(t, quizzes.quizzes, 1)
	assert.False(t, quiz.ID.IsZero())
}

func TestCreateQuizRejectsUnknownModule(t *testing.T) {
	svc, _, quizzes := newTestContentService()

	quiz := validQuiz(primitive.NewObjectID())
	err := svc.CreateQuiz(context.Background(), quiz)
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.Empty(t, quizzes.quizzes, "quiz with a dangling module reference must not be saved")
}

func TestUpdateQuizRejectsUnknownModule(t *testing.T) {
	svc, modules, quizzes := newTestContentService()
	module := seedModule(modules)

	quiz := validQuiz(module.ID)
	require.NoError(t, svc.CreateQuiz(context.Background(), quiz))

	moved := validQuiz(primitive.NewObjectID())
	_, err := svc.UpdateQuiz(context.Background(), quiz.ID, moved)
	assert.ErrorIs(t, err, ErrModuleNotFound)

	stored, err := quizzes.FindByID(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, module.ID, stored.ModuleID, "rejected update must leave the stored quiz untouched")
}
