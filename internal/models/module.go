package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TopicLink struct {
	Title string `bson:"title" json:"title"`
	URL   string `bson:"url" json:"url"`
}

type Topic struct {
	ID        string      `bson:"id" json:"id"`
	Title     string      `bson:"title" json:"title"`
	VideoIDs  []string    `bson:"video_ids" json:"video_ids"`
	Questions []string    `bson:"questions" json:"questions"`
	Notes     []string    `bson:"notes" json:"notes"`
	Links     []TopicLink `bson:"links" json:"links"`
}

type ModuleAnalytics struct {
	Views        int     `bson:"views" json:"views"`
	Completions  int     `bson:"completions" json:"completions"`
	AverageScore float64 `bson:"average_score" json:"average_score"`
}

// ModuleVersion is a snapshot of the mutable fields taken before each update.
type ModuleVersion struct {
	Version     int       `bson:"version" json:"version"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Topics      []Topic   `bson:"topics" json:"topics"`
	SnapshotAt  time.Time `bson:"snapshot_at" json:"snapshot_at"`
}

type Module struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	ModuleType       string             `bson:"module_type" json:"module_type"`
	CategoryID       string             `bson:"category_id,omitempty" json:"category_id"`
	AgeRange         string             `bson:"age_range" json:"age_range"`
	Difficulty       string             `bson:"difficulty" json:"difficulty"`
	Topics           []Topic            `bson:"topics" json:"topics"`
	Analytics        ModuleAnalytics    `bson:"analytics" json:"analytics"`
	Version          int                `bson:"version" json:"version"`
	PreviousVersions []ModuleVersion    `bson:"previous_versions" json:"-"`
	Published        bool               `bson:"published" json:"published"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

func (m *Module) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("module title is required")
	}
	if m.Description == "" {
		return fmt.Errorf("module description is required")
	}
	return nil
}

// Snapshot returns a version record of the current mutable fields.
func (m *Module) Snapshot(now time.Time) ModuleVersion {
	topics := make([]Topic, len(m.Topics))
	copy(topics, m.Topics)
	return ModuleVersion{
		Version:     m.Version,
		Title:       m.Title,
		Description: m.Description,
		Topics:      topics,
		SnapshotAt:  now,
	}
}

// CategoryModule groups modules for the admin console.
type CategoryModule struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	AgeRange    string             `bson:"age_range" json:"age_range"`
	Order       int                `bson:"order" json:"order"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (c *CategoryModule) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}
