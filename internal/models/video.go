package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ModuleID    primitive.ObjectID `bson:"module_id,omitempty" json:"module_id"`
	TopicID     string             `bson:"topic_id,omitempty" json:"topic_id"`
	FilePath    string             `bson:"file_path" json:"file_path"`
	FileSize    int64              `bson:"file_size" json:"file_size"`
	MimeType    string             `bson:"mime_type" json:"mime_type"`
	Duration    int                `bson:"duration" json:"duration"`
	Views       int                `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (v *Video) Validate() error {
	if v.Title == "" {
		return fmt.Errorf("video title is required")
	}
	return nil
}
