package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/gamification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleProgress() *contentapi.Progress {
	return &contentapi.Progress{
		XP:     130,
		Streak: 6,
		Badges: json.RawMessage(`"Fast Starter, Layout Sprout, Consistency Champ, Mystery"`),
		Activities: json.RawMessage(`[
			{"message":"Completed a challenge","badges":["Layout Sprout"],"timestamp":1700000000},
			"{\"message\":\"Created a doc\",\"badges\":\"\",\"timestamp\":\"1700000500\"}",
			{"message":"Signed up","timestamp":1600000000}
		]`),
	}
}

func TestDashboardUsesCache(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{}
	userID := uuid.New()
	api.On("GetProgress", mock.Anything, userID.String()).Return(sampleProgress(), nil).Once()

	svc := NewProgressService(newFactory(t), api, cache.NewMemoryProgressCache(time.Minute), nopLog)

	d, err := svc.Dashboard(ctx, userID, 2)
	require.NoError(t, err)
	assert.Equal(t, 130, d.XP)
	assert.Equal(t, 2, d.Level)
	assert.Equal(t, 30, d.LevelProgress)
	assert.Equal(t, 30, d.LevelPercent)
	assert.Len(t, d.Badges, 4)
	assert.Equal(t, "Rocket", d.Badges[0].Icon)
	assert.Equal(t, gamification.CategoryOther, d.Badges[3].Category)

	require.Len(t, d.Activities, 2)
	assert.Equal(t, "Created a doc", d.Activities[0].Message)
	assert.Equal(t, time.Unix(1700000500, 0).UTC(), d.Activities[0].Timestamp)
	assert.Equal(t, "Layout Sprout", d.Activities[1].Badges[0].Name)
	assert.NotEmpty(t, d.NextBadges)

	_, err = svc.Dashboard(ctx, userID, 0)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "GetProgress", 1)

	svc.Invalidate(ctx, userID.String())
	api.On("GetProgress", mock.Anything, userID.String()).Return(&contentapi.Progress{XP: 5}, nil).Once()
	d, err = svc.Dashboard(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, d.XP)
	assert.Empty(t, d.Badges)
	assert.Empty(t, d.Activities)
}

func TestDashboardUpstreamError(t *testing.T) {
	api := &mockAPI{}
	userID := uuid.New()
	api.On("GetProgress", mock.Anything, userID.String()).Return(nil, &contentapi.APIError{Status: 503, Message: "down"})

	svc := NewProgressService(newFactory(t), api, nil, nopLog)
	_, err := svc.Dashboard(context.Background(), userID, 0)
	_, ok := contentapi.AsAPIError(err)
	assert.True(t, ok)
}

func TestBadgesFilter(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{}
	userID := uuid.New()
	api.On("GetProgress", mock.Anything, userID.String()).Return(sampleProgress(), nil)
	svc := NewProgressService(newFactory(t), api, nil, nopLog)

	res, err := svc.Badges(ctx, userID, "STREAK", "")
	require.NoError(t, err)
	assert.Equal(t, "streak", res.Filter)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Consistency Champ", res.Badges[0].Name)

	res, err = svc.Badges(ctx, userID, "bogus", "sprout")
	require.NoError(t, err)
	assert.Equal(t, "all", res.Filter)
	require.Len(t, res.Badges, 1)
	assert.Equal(t, "Layout Sprout", res.Badges[0].Name)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFactory(t)
	local := createUser(t, f, "grace", true)
	me := uuid.New()

	api := &mockAPI{}
	api.On("Leaderboard", mock.Anything).Return([]contentapi.LeaderboardEntry{
		{ID: "u-bob", Name: "Bob", XP: 50, Streak: 1},
		{ID: me.String(), Name: "Me", XP: 80, Streak: 2, Badges: json.RawMessage(`["Rising Coder"]`)},
		{ID: "u-amy", Name: "amy", XP: 80, Streak: 2},
		{ID: local.Id.String(), XP: 300, Streak: 9},
		{ID: "ghost", XP: 1, Avatar: "http://img/ghost.png"},
	}, nil)
	svc := NewProgressService(f, api, nil, nopLog)

	res, err := svc.Leaderboard(ctx, me, dto.LeaderboardQuery{})
	require.NoError(t, err)

	names := []string{}
	for _, e := range res.Items {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"grace", "amy", "Me", "Bob", "Anonymous"}, names)
	require.Len(t, res.Podium, 3)
	assert.Equal(t, 1, res.Podium[0].Rank)
	assert.Equal(t, 4, res.Podium[0].Level)

	require.NotNil(t, res.Me)
	assert.Equal(t, 3, res.Me.Rank)
	assert.True(t, res.Me.IsMe)
	assert.Equal(t, "Rising Coder", res.Me.Badges[0].Name)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 1, res.TotalPages)

	res, err = svc.Leaderboard(ctx, me, dto.LeaderboardQuery{Search: "B", PerPage: 1, Page: 9})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Bob", res.Items[0].Name)
	assert.Equal(t, 4, res.Items[0].Rank)
	assert.Len(t, res.Podium, 3)
}

func TestLeaderboardWithoutMe(t *testing.T) {
	api := &mockAPI{}
	api.On("Leaderboard", mock.Anything).Return([]contentapi.LeaderboardEntry{}, nil)
	svc := NewProgressService(newFactory(t), api, nil, nopLog)

	res, err := svc.Leaderboard(context.Background(), uuid.New(), dto.LeaderboardQuery{})
	require.NoError(t, err)
	assert.Nil(t, res.Me)
	assert.Empty(t, res.Podium)
	assert.Empty(t, res.Items)
}

func TestAwardXP(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	progressCache := cache.NewMemoryProgressCache(time.Minute)
	progressCache.Set(ctx, userID.String(), &contentapi.Progress{XP: 10})

	api := &mockAPI{}
	api.On("UpdateProgress", mock.Anything, userID.String(), 25, "Closures").Return(&contentapi.Progress{XP: 35}, nil)
	api.On("GetProgress", mock.Anything, userID.String()).Return(&contentapi.Progress{XP: 35, Streak: 1}, nil).Once()
	svc := NewProgressService(newFactory(t), api, progressCache, nopLog)

	d, err := svc.AwardXP(ctx, userID, &dto.AwardXPRequest{XPEarned: 25, ChallengeTitle: " Closures "})
	require.NoError(t, err)
	assert.Equal(t, 35, d.XP)
	assert.Equal(t, 1, d.Streak)

	cached, ok := progressCache.Get(ctx, userID.String())
	require.True(t, ok)
	assert.Equal(t, 35, cached.XP)

	_, err = svc.AwardXP(ctx, userID, &dto.AwardXPRequest{XPEarned: 0})
	assertAppError(t, err, 400)
	api.AssertExpectations(t)
}

func TestAwardXPFallsBackToUpdateResponse(t *testing.T) {
	userID := uuid.New()
	api := &mockAPI{}
	api.On("UpdateProgress", mock.Anything, userID.String(), 10, "").Return(&contentapi.Progress{XP: 60}, nil)
	api.On("GetProgress", mock.Anything, userID.String()).Return(nil, errors.New("timeout"))
	svc := NewProgressService(newFactory(t), api, nil, nopLog)

	d, err := svc.AwardXP(context.Background(), userID, &dto.AwardXPRequest{XPEarned: 10})
	require.NoError(t, err)
	assert.Equal(t, 60, d.XP)
}

func TestRefreshStoresSnapshot(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()
	progressCache := cache.NewMemoryProgressCache(time.Minute)
	api := &mockAPI{}
	api.On("GetProgress", mock.Anything, userID).Return(&contentapi.Progress{XP: 42}, nil)
	svc := NewProgressService(newFactory(t), api, progressCache, nopLog)

	require.NoError(t, svc.Refresh(ctx, userID))
	p, ok := progressCache.Get(ctx, userID)
	require.True(t, ok)
	assert.Equal(t, 42, p.XP)
}
