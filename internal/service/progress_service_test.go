package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/models"
)

func newTestProgressService() (*ProgressService, *fakeProgressStore, *fakePointsStore, *event.MockPublisher) {
	progress := &fakeProgressStore{byKey: map[string]*models.Progress{}}
	users := &fakePointsStore{points: map[primitive.ObjectID]int{}, streaks: map[primitive.ObjectID]int{}}
	publisher := event.NewMockPublisher()
	svc := NewProgressService(progress, newFakeModuleStore(), users, publisher)
	return svc, progress, users, publisher
}

func intp(v int) *int { return &v }

func TestProgressUpdateInputCarriesPoints(t *testing.T) {
	var in ProgressUpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"percentage":40,"time_spent":60,"points":25}`), &in))
	require.NotNil(t, in.Percentage)
	assert.Equal(t, 40, *in.Percentage)
	assert.Equal(t, 60, in.TimeSpent)
	assert.Equal(t, 25, in.Points)
}

func TestUpdateAccumulatesPoints(t *testing.T) {
	svc, _, users, _ := newTestProgressService()
	userID := primitive.NewObjectID()
	moduleID := primitive.NewObjectID()

	p, err := svc.Update(context.Background(), userID, moduleID, ProgressUpdateInput{
		Percentage: intp(40),
		Points:     25,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, p.PointsEarned)

	p, err = svc.Update(context.Background(), userID, moduleID, ProgressUpdateInput{
		Percentage: intp(55),
		Points:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, 35, p.PointsEarned, "points accumulate across updates")
	assert.Equal(t, 35, users.points[userID], "user total mirrors the accumulated points")
}

func TestUpdateWithoutPointsLeavesTotalsAlone(t *testing.T) {
	svc, _, users, _ := newTestProgressService()
	userID := primitive.NewObjectID()
	moduleID := primitive.NewObjectID()

	p, err := svc.Update(context.Background(), userID, moduleID, ProgressUpdateInput{
		Percentage: intp(30),
		TimeSpent:  120,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.PointsEarned)
	assert.Empty(t, users.points)
}
