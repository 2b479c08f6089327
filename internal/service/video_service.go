package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/metrics"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoTooLarge    = errors.New("video exceeds the maximum upload size")
	ErrNotAVideo        = errors.New("uploaded file is not a video")
	ErrVideoFileMissing = errors.New("video file is required")
)

type VideoUploadInput struct {
	Title       string
	Description string
	ModuleID    primitive.ObjectID
	TopicID     string
	Duration    int
}

type VideoService struct {
	videos  *repository.VideoRepository
	dir     string
	maxSize int64
}

func NewVideoService(videos *repository.VideoRepository, dir string, maxSize int64) *VideoService {
	return &VideoService{videos: videos, dir: dir, maxSize: maxSize}
}

func (s *VideoService) List(ctx context.Context, moduleID primitive.ObjectID, opts repository.ListOptions) ([]models.Video, error) {
	return s.videos.FindAll(ctx, moduleID, opts)
}

func (s *VideoService) Get(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

// Upload streams the multipart file to disk and records its metadata. Files
// are stored under a timestamp+uuid name so original filenames never collide
// or reach the filesystem.
func (s *VideoService) Upload(ctx context.Context, header *multipart.FileHeader, in VideoUploadInput) (*models.Video, error) {
	if header == nil {
		return nil, ErrVideoFileMissing
	}
	if header.Size > s.maxSize {
		metrics.VideoUploads.WithLabelValues("rejected").Inc()
		return nil, ErrVideoTooLarge
	}
	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "video/") {
		metrics.VideoUploads.WithLabelValues("rejected").Inc()
		return nil, ErrNotAVideo
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), filepath.Ext(header.Filename))
	path := filepath.Join(s.dir, name)

	if err := saveFile(header, path); err != nil {
		metrics.VideoUploads.WithLabelValues("error").Inc()
		return nil, err
	}

	video := &models.Video{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		ModuleID:    in.ModuleID,
		TopicID:     in.TopicID,
		FilePath:    path,
		FileSize:    header.Size,
		MimeType:    mimeType,
		Duration:    in.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := video.Validate(); err != nil {
		removeQuietly(path)
		return nil, err
	}
	if err := s.videos.Create(ctx, video); err != nil {
		removeQuietly(path)
		metrics.VideoUploads.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.VideoUploads.WithLabelValues("accepted").Inc()
	return video, nil
}

func (s *VideoService) Update(ctx context.Context, id primitive.ObjectID, title, description string, duration int) (*models.Video, error) {
	err := s.videos.Update(ctx, id, bson.M{
		"title":       title,
		"description": description,
		"duration":    duration,
		"updated_at":  time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return s.videos.FindByID(ctx, id)
}

// Delete removes the record first, then the file best effort; a leaked file
// is preferable to a record pointing at nothing.
func (s *VideoService) Delete(ctx context.Context, id primitive.ObjectID) error {
	video, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	removeQuietly(video.FilePath)
	return nil
}

// RecordView bumps the view counter, best effort.
func (s *VideoService) RecordView(ctx context.Context, id primitive.ObjectID) {
	if err := s.videos.IncrementViews(ctx, id); err != nil {
		log.Printf("Failed to count view for video %s: %v", id.Hex(), err)
	}
}

func saveFile(header *multipart.FileHeader, path string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		removeQuietly(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove %s: %v", path, err)
	}
}
