package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/event"
	"learning-service/internal/models"
	"learning-service/internal/repository"
)

type fakeAchievementStore struct {
	achievements map[primitive.ObjectID]*models.Achievement
	awards       map[string]*models.UserAchievement
}

func newFakeAchievementStore() *fakeAchievementStore {
	return &fakeAchievementStore{
		achievements: map[primitive.ObjectID]*models.Achievement{},
		awards:       map[string]*models.UserAchievement{},
	}
}

func awardKey(userID, achievementID primitive.ObjectID) string {
	return userID.Hex() + ":" + achievementID.Hex()
}

func (f *fakeAchievementStore) FindAll(_ context.Context, activeOnly bool) ([]models.Achievement, error) {
	var out []models.Achievement
	for _, a := range f.achievements {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAchievementStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	a, ok := f.achievements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAchievementStore) Create(_ context.Context, achievement *models.Achievement) error {
	f.achievements[achievement.ID] = achievement
	return nil
}

func (f *fakeAchievementStore) Update(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	if _, ok := f.achievements[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeAchievementStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.achievements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.achievements, id)
	return nil
}

// CreateAward mimics the unique (user, achievement) index.
func (f *fakeAchievementStore) CreateAward(_ context.Context, award *models.UserAchievement) error {
	key := awardKey(award.UserID, award.AchievementID)
	if _, ok := f.awards[key]; ok {
		return repository.ErrAlreadyAwarded
	}
	f.awards[key] = award
	return nil
}

func (f *fakeAchievementStore) FindAwardsByUser(_ context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	for _, a := range f.awards {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeRewardStore struct {
	points map[primitive.ObjectID]int
	badges map[primitive.ObjectID][]string
}

func newFakeRewardStore() *fakeRewardStore {
	return &fakeRewardStore{
		points: map[primitive.ObjectID]int{},
		badges: map[primitive.ObjectID][]string{},
	}
}

func (f *fakeRewardStore) AddPoints(_ context.Context, id primitive.ObjectID, points int) error {
	f.points[id] += points
	return nil
}

func (f *fakeRewardStore) AddBadge(_ context.Context, id primitive.ObjectID, badge string) error {
	f.badges[id] = append(f.badges[id], badge)
	return nil
}

func testAchievement() *models.Achievement {
	return &models.Achievement{
		ID:       primitive.NewObjectID(),
		Name:     "First Steps",
		Category: "progress",
		Rarity:   "common",
		Rewards:  models.AchievementRewards{Points: 50, XP: 100, Coins: 10},
		IsActive: true,
	}
}

func TestAwardGrantsOnceAndCopiesRewards(t *testing.T) {
	store := newFakeAchievementStore()
	rewards := newFakeRewardStore()
	achievement := testAchievement()
	store.achievements[achievement.ID] = achievement
	svc := NewAchievementService(store, rewards, event.NewMockPublisher())
	userID := primitive.NewObjectID()

	award, err := svc.Award(context.Background(), userID, achievement.ID)
	require.NoError(t, err)
	assert.Equal(t, achievement.Rewards, award.Rewards)
	assert.Equal(t, 50, rewards.points[userID])
	assert.Equal(t, []string{"First Steps"}, rewards.badges[userID])

	// definition edits after the grant never change what was earned
	achievement.Rewards.Points = 999
	got, err := svc.ListAwards(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].Rewards.Points)
}

func TestAwardSecondGrantConflicts(t *testing.T) {
	store := newFakeAchievementStore()
	rewards := newFakeRewardStore()
	achievement := testAchievement()
	store.achievements[achievement.ID] = achievement
	svc := NewAchievementService(store, rewards, event.NewMockPublisher())
	userID := primitive.NewObjectID()

	_, err := svc.Award(context.Background(), userID, achievement.ID)
	require.NoError(t, err)

	_, err = svc.Award(context.Background(), userID, achievement.ID)
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	// the losing grant must not double the rewards
	assert.Equal(t, 50, rewards.points[userID])
	assert.Len(t, rewards.badges[userID], 1)
}

func TestAwardInactiveAchievement(t *testing.T) {
	store := newFakeAchievementStore()
	achievement := testAchievement()
	achievement.IsActive = false
	store.achievements[achievement.ID] = achievement
	svc := NewAchievementService(store, newFakeRewardStore(), event.NewMockPublisher())

	_, err := svc.Award(context.Background(), primitive.NewObjectID(), achievement.ID)
	assert.ErrorIs(t, err, ErrAchievementInactive)
}

func TestAwardUnknownAchievement(t *testing.T) {
	svc := NewAchievementService(newFakeAchievementStore(), newFakeRewardStore(), event.NewMockPublisher())

	_, err := svc.Award(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAchievementNotFound)
}

func TestAwardTimestampIsSet(t *testing.T) {
	store := newFakeAchievementStore()
	achievement := testAchievement()
	store.achievements[achievement.ID] = achievement
	svc := NewAchievementService(store, newFakeRewardStore(), event.NewMockPublisher())

	before := time.Now()
	award, err := svc.Award(context.Background(), primitive.NewObjectID(), achievement.ID)
	require.NoError(t, err)
	assert.False(t, award.AwardedAt.Before(before))
}
