package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

type QuizScore struct {
	QuizID        primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	AttemptID     primitive.ObjectID `bson:"attempt_id" json:"attempt_id"`
	AttemptNumber int                `bson:"attempt_number" json:"attempt_number"`
	Score         int                `bson:"score" json:"score"`
	Passed        bool               `bson:"passed" json:"passed"`
	RecordedAt    time.Time          `bson:"recorded_at" json:"recorded_at"`
}

type CompletedTopic struct {
	TopicID     string    `bson:"topic_id" json:"topic_id"`
	Title       string    `bson:"title" json:"title"`
	Score       int       `bson:"score" json:"score"`
	CompletedAt time.Time `bson:"completed_at" json:"completed_at"`
}

type Streak struct {
	Current      int       `bson:"current" json:"current"`
	Longest      int       `bson:"longest" json:"longest"`
	LastActivity time.Time `bson:"last_activity" json:"last_activity"`
}

type Milestone struct {
	Name       string    `bson:"name" json:"name"`
	ReachedAt  time.Time `bson:"reached_at" json:"reached_at"`
	Percentage int       `bson:"percentage" json:"percentage"`
}

type Bookmark struct {
	TopicID string    `bson:"topic_id" json:"topic_id"`
	Title   string    `bson:"title" json:"title"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

type Note struct {
	ID      string    `bson:"id" json:"id"`
	TopicID string    `bson:"topic_id" json:"topic_id"`
	Text    string    `bson:"text" json:"text"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Progress is the per (user, module) aggregate; one document per pair,
// enforced by a unique compound index.
type Progress struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ModuleID        primitive.ObjectID `bson:"module_id" json:"module_id"`
	Percentage      int                `bson:"percentage" json:"percentage"`
	Status          string             `bson:"status" json:"status"`
	TimeSpent       int                `bson:"time_spent" json:"time_spent"`
	PointsEarned    int                `bson:"points_earned" json:"points_earned"`
	QuizScores      []QuizScore        `bson:"quiz_scores" json:"quiz_scores"`
	CompletedTopics []CompletedTopic   `bson:"completed_topics" json:"completed_topics"`
	Streak          Streak             `bson:"streak" json:"streak"`
	Milestones      []Milestone        `bson:"milestones" json:"milestones"`
	Bookmarks       []Bookmark         `bson:"bookmarks" json:"bookmarks"`
	Notes           []Note             `bson:"notes" json:"notes"`
	StartedAt       time.Time          `bson:"started_at" json:"started_at"`
	CompletedAt     time.Time          `bson:"completed_at,omitempty" json:"completed_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func NewProgress(userID, moduleID primitive.ObjectID, now time.Time) *Progress {
	return &Progress{
		UserID:    userID,
		ModuleID:  moduleID,
		Status:    StatusInProgress,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// daysBetween returns the whole-day delta between two instants, comparing
// calendar days rather than 24h windows.
func daysBetween(earlier, later time.Time) int {
	ey, em, ed := earlier.Date()
	ly, lm, ld := later.Date()
	start := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	end := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// TouchActivity updates the streak counters from the day delta since the
// last recorded activity: same day is a no-op, exactly one day increments,
// a longer gap resets the streak to 1.
func (p *Progress) TouchActivity(now time.Time) {
	if p.Streak.LastActivity.IsZero() {
		p.Streak.Current = 1
	} else {
		switch delta := daysBetween(p.Streak.LastActivity, now); {
		case delta == 0:
			// same day, streak unchanged
		case delta == 1:
			p.Streak.Current++
		default:
			p.Streak.Current = 1
		}
	}
	if p.Streak.Current > p.Streak.Longest {
		p.Streak.Longest = p.Streak.Current
	}
	p.Streak.LastActivity = now
}

// SetPercentage overwrites the stored percentage (last write wins, no
// high-water mark) and handles the status transition at 100.
func (p *Progress) SetPercentage(percentage int, now time.Time) {
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}
	p.Percentage = percentage
	if percentage >= 100 {
		p.Status = StatusCompleted
		if p.CompletedAt.IsZero() {
			p.CompletedAt = now
		}
	} else if p.Status != StatusCompleted {
		p.Status = StatusInProgress
	}
	p.UpdatedAt = now
}

// RecordQuizResult appends to the quiz history and overwrites the module
// percentage with the attempt's adjusted score.
func (p *Progress) RecordQuizResult(score QuizScore, adjustedScore int, now time.Time) {
	p.QuizScores = append(p.QuizScores, score)
	p.TouchActivity(now)
	p.SetPercentage(adjustedScore, now)
}

// AddCompletedTopic tracks granular topic completion, separate from the
// percentage field. Re-completing a topic refreshes its score.
func (p *Progress) AddCompletedTopic(topicID, title string, score int, now time.Time) {
	for i, t := range p.CompletedTopics {
		if t.TopicID == topicID {
			p.CompletedTopics[i].Score = score
			p.CompletedTopics[i].CompletedAt = now
			p.UpdatedAt = now
			return
		}
	}
	p.CompletedTopics = append(p.CompletedTopics, CompletedTopic{
		TopicID:     topicID,
		Title:       title,
		Score:       score,
		CompletedAt: now,
	})
	p.UpdatedAt = now
}

// AddMilestone records a named milestone once.
func (p *Progress) AddMilestone(name string, percentage int, now time.Time) {
	for _, m := range p.Milestones {
		if m.Name == name {
			return
		}
	}
	p.Milestones = append(p.Milestones, Milestone{Name: name, ReachedAt: now, Percentage: percentage})
}
