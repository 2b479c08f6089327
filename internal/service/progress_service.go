package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var ErrProgressNotFound = errors.New("no progress recorded for this module")

type ProgressUpdateInput struct {
	Percentage *int `json:"percentage"`
	TimeSpent  int  `json:"time_spent"`
	Points     int  `json:"points"`
}

type CompletedTopicInput struct {
	TopicID string `json:"topic_id" binding:"required"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
}

type BookmarkInput struct {
	TopicID string `json:"topic_id" binding:"required"`
	Title   string `json:"title"`
}

type NoteInput struct {
	TopicID string `json:"topic_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

type moduleCompletionStore interface {
	RecordCompletion(ctx context.Context, id primitive.ObjectID, score float64) error
}

// ProgressService owns the per (user, module) aggregates outside the quiz
// submission path: manual percentage updates, topic completion, bookmarks and
// notes.
type ProgressService struct {
	progress  progressStore
	modules   moduleCompletionStore
	users     pointsStore
	publisher event.Publisher
	now       func() time.Time
}

func NewProgressService(progress progressStore, modules moduleCompletionStore, users pointsStore, publisher event.Publisher) *ProgressService {
	return &ProgressService{
		progress:  progress,
		modules:   modules,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// load returns the existing aggregate or a fresh one when this is the user's
// first touch of the module.
func (s *ProgressService) load(ctx context.Context, userID, moduleID primitive.ObjectID, now time.Time) (*models.Progress, error) {
	progress, err := s.progress.FindByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewProgress(userID, moduleID, now), nil
		}
		return nil, err
	}
	return progress, nil
}

// markMilestones stamps the named progress milestones the current
// percentage has reached. AddMilestone is idempotent per name.
func markMilestones(p *models.Progress, now time.Time) {
	for _, m := range []struct {
		name string
		pct  int
	}{
		{"quarter", 25},
		{"halfway", 50},
		{"three-quarters", 75},
		{"completed", 100},
	} {
		if p.Percentage >= m.pct {
			p.AddMilestone(m.name, m.pct, now)
		}
	}
}

func (s *ProgressService) Get(ctx context.Context, userID, moduleID primitive.ObjectID) (*models.Progress, error) {
	progress, err := s.progress.FindByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Progress, error) {
	return s.progress.FindByUser(ctx, userID)
}

// Update applies a manual progress update. A lower percentage overwrites a
// higher one; the stored value tracks the latest report, not a high-water
// mark.
func (s *ProgressService) Update(ctx context.Context, userID, moduleID primitive.ObjectID, in ProgressUpdateInput) (*models.Progress, error) {
	now := s.now()
	progress, err := s.load(ctx, userID, moduleID, now)
	if err != nil {
		return nil, err
	}

	wasCompleted := progress.Status == models.StatusCompleted
	progress.TouchActivity(now)
	if in.Percentage != nil {
		progress.SetPercentage(*in.Percentage, now)
	}
	if in.TimeSpent > 0 {
		progress.TimeSpent += in.TimeSpent
	}
	if in.Points > 0 {
		progress.PointsEarned += in.Points
	}
	markMilestones(progress, now)
	progress.UpdatedAt = now

	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	if in.Points > 0 {
		if err := s.users.AddPoints(ctx, userID, in.Points); err != nil {
			log.Printf("Failed to add points for user %s: %v", userID.Hex(), err)
		}
	}
	if err := s.users.SetStreak(ctx, userID, progress.Streak.Current); err != nil {
		log.Printf("Failed to sync streak for user %s: %v", userID.Hex(), err)
	}
	if !wasCompleted && progress.Status == models.StatusCompleted {
		s.onCompleted(ctx, userID, moduleID, progress)
	}
	s.publishUpdate(userID, moduleID, progress)
	return progress, nil
}

func (s *ProgressService) onCompleted(ctx context.Context, userID, moduleID primitive.ObjectID, progress *models.Progress) {
	if err := s.modules.RecordCompletion(ctx, moduleID, float64(progress.Percentage)); err == nil {
		_ = s.publisher.Publish(event.ModuleCompleted, map[string]any{
			"userId":   userID.Hex(),
			"moduleId": moduleID.Hex(),
		})
	}
}

func (s *ProgressService) publishUpdate(userID, moduleID primitive.ObjectID, progress *models.Progress) {
	_ = s.publisher.Publish(event.ProgressUpdated, map[string]any{
		"userId":     userID.Hex(),
		"moduleId":   moduleID.Hex(),
		"percentage": progress.Percentage,
		"status":     progress.Status,
	})
}

func (s *ProgressService) CompleteTopic(ctx context.Context, userID, moduleID primitive.ObjectID, in CompletedTopicInput) (*models.Progress, error) {
	now := s.now()
	progress, err := s.load(ctx, userID, moduleID, now)
	if err != nil {
		return nil, err
	}
	progress.AddCompletedTopic(in.TopicID, in.Title, in.Score, now)
	progress.TouchActivity(now)
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) AddBookmark(ctx context.Context, userID, moduleID primitive.ObjectID, in BookmarkInput) (*models.Progress, error) {
	now := s.now()
	progress, err := s.load(ctx, userID, moduleID, now)
	if err != nil {
		return nil, err
	}
	for _, b := range progress.Bookmarks {
		if b.TopicID == in.TopicID {
			return progress, nil
		}
	}
	progress.Bookmarks = append(progress.Bookmarks, models.Bookmark{
		TopicID: in.TopicID,
		Title:   in.Title,
		AddedAt: now,
	})
	progress.UpdatedAt = now
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) RemoveBookmark(ctx context.Context, userID, moduleID primitive.ObjectID, topicID string) (*models.Progress, error) {
	progress, err := s.Get(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	kept := progress.Bookmarks[:0]
	for _, b := range progress.Bookmarks {
		if b.TopicID != topicID {
			kept = append(kept, b)
		}
	}
	progress.Bookmarks = kept
	progress.UpdatedAt = s.now()
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) AddNote(ctx context.Context, userID, moduleID primitive.ObjectID, in NoteInput) (*models.Progress, error) {
	now := s.now()
	progress, err := s.load(ctx, userID, moduleID, now)
	if err != nil {
		return nil, err
	}
	progress.Notes = append(progress.Notes, models.Note{
		ID:      uuid.NewString(),
		TopicID: in.TopicID,
		Text:    in.Text,
		AddedAt: now,
	})
	progress.UpdatedAt = now
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) RemoveNote(ctx context.Context, userID, moduleID primitive.ObjectID, noteID string) (*models.Progress, error) {
	progress, err := s.Get(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	kept := progress.Notes[:0]
	for _, n := range progress.Notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	progress.Notes = kept
	progress.UpdatedAt = s.now()
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}
