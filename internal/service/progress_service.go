package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/contentapi"
	"fundocs-be/pkg/docparse"
	"fundocs-be/pkg/gamification"
	"fundocs-be/pkg/pagination"

	"github.com/google/uuid"
)

const (
	defaultActivityLimit  = 10
	defaultNextBadges     = 3
	leaderboardPerPage    = 10
	leaderboardPodiumSize = 3
)

type IProgressService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, activityLimit int) (*dto.DashboardResponse, error)
	Badges(ctx context.Context, userID uuid.UUID, filter, search string) (*dto.BadgeCatalogResponse, error)
	Leaderboard(ctx context.Context, userID uuid.UUID, q dto.LeaderboardQuery) (*dto.LeaderboardResponse, error)
	AwardXP(ctx context.Context, userID uuid.UUID, req *dto.AwardXPRequest) (*dto.DashboardResponse, error)
	Refresh(ctx context.Context, userID string) error
	Invalidate(ctx context.Context, userID string)
}

type progressService struct {
	uowFactory unitofwork.RepositoryFactory
	api        contentapi.API
	cache      cache.ProgressCache
	logger     logger.ILogger
}

func NewProgressService(uowFactory unitofwork.RepositoryFactory, api contentapi.API, progressCache cache.ProgressCache, log logger.ILogger) IProgressService {
	if progressCache == nil {
		progressCache = cache.NopProgressCache{}
	}
	return &progressService{
		uowFactory: uowFactory,
		api:        api,
		cache:      progressCache,
		logger:     log,
	}
}

func (s *progressService) progress(ctx context.Context, userID string) (*contentapi.Progress, error) {
	if p, ok := s.cache.Get(ctx, userID); ok {
		return p, nil
	}
	p, err := s.api.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, userID, p)
	return p, nil
}

func buildDashboard(p *contentapi.Progress, activityLimit int) *dto.DashboardResponse {
	if activityLimit <= 0 {
		activityLimit = defaultActivityLimit
	}
	badges := p.BadgeNames()

	activities := []dto.ActivityDTO{}
	for _, a := range p.ActivityList() {
		if len(activities) == activityLimit {
			break
		}
		activities = append(activities, dto.ActivityDTO{
			Message:   a.Message,
			Badges:    gamification.DescribeAll(a.Badges),
			Timestamp: time.Unix(a.Timestamp, 0).UTC(),
		})
	}

	return &dto.DashboardResponse{
		XP:            p.XP,
		Streak:        p.Streak,
		Level:         gamification.Level(p.XP),
		LevelProgress: gamification.LevelProgress(p.XP),
		LevelPercent:  gamification.LevelPercent(p.XP),
		Badges:        gamification.DescribeAll(badges),
		Activities:    activities,
		NextBadges:    gamification.NextBadges(p.XP, p.Streak, badges, defaultNextBadges),
	}
}

func (s *progressService) Dashboard(ctx context.Context, userID uuid.UUID, activityLimit int) (*dto.DashboardResponse, error) {
	p, err := s.progress(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	return buildDashboard(p, activityLimit), nil
}

func (s *progressService) Badges(ctx context.Context, userID uuid.UUID, filter, search string) (*dto.BadgeCatalogResponse, error) {
	p, err := s.progress(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	category := gamification.ParseCategory(filter)
	names := gamification.Filter(p.BadgeNames(), search, category)
	return &dto.BadgeCatalogResponse{
		Filter: string(category),
		Badges: gamification.DescribeAll(names),
		Total:  len(names),
	}, nil
}

func (s *progressService) AwardXP(ctx context.Context, userID uuid.UUID, req *dto.AwardXPRequest) (*dto.DashboardResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	p, err := s.api.UpdateProgress(ctx, userID.String(), req.XPEarned, strings.TrimSpace(req.ChallengeTitle))
	if err != nil {
		return nil, err
	}
	// the update response is partial on some upstream versions
	s.cache.Delete(ctx, userID.String())
	full, err := s.progress(ctx, userID.String())
	if err != nil {
		s.logger.Warn("ProgressService", "Falling back to update response", map[string]interface{}{"user_id": userID, "error": err.Error()})
		full = p
	}
	return buildDashboard(full, 0), nil
}

func (s *progressService) Refresh(ctx context.Context, userID string) error {
	p, err := s.api.GetProgress(ctx, userID)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, userID, p)
	return nil
}

func (s *progressService) Invalidate(ctx context.Context, userID string) {
	s.cache.Delete(ctx, userID)
}

// rankLeaderboard orders by xp desc, then streak desc, then name asc.
func rankLeaderboard(entries []dto.LeaderboardEntryDTO) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func (s *progressService) Leaderboard(ctx context.Context, userID uuid.UUID, q dto.LeaderboardQuery) (*dto.LeaderboardResponse, error) {
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, err
	}
	raw, err := s.api.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntryDTO, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, dto.LeaderboardEntryDTO{
			UserId: e.ID,
			Name:   strings.TrimSpace(e.Name),
			Avatar: e.Avatar,
			XP:     e.XP,
			Streak: e.Streak,
			Level:  gamification.Level(e.XP),
			Badges: gamification.DescribeAll(docparse.StringList(e.Badges)),
			IsMe:   e.ID == userID.String(),
		})
	}
	s.fillFromUsers(ctx, entries)
	for i := range entries {
		if entries[i].Name == "" {
			entries[i].Name = "Anonymous"
		}
	}
	rankLeaderboard(entries)

	resp := &dto.LeaderboardResponse{Podium: []dto.LeaderboardEntryDTO{}}
	for i := 0; i < len(entries) && i < leaderboardPodiumSize; i++ {
		resp.Podium = append(resp.Podium, entries[i])
	}
	for i := range entries {
		if entries[i].IsMe {
			me := entries[i]
			resp.Me = &me
			break
		}
	}

	filtered := entries
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		filtered = []dto.LeaderboardEntryDTO{}
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), search) {
				filtered = append(filtered, e)
			}
		}
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = leaderboardPerPage
	}
	page := pagination.Paginate(filtered, q.Page, perPage)
	resp.Items = page.Items
	resp.Page = page.Page
	resp.PerPage = page.PerPage
	resp.Total = page.Total
	resp.TotalPages = page.TotalPages
	return resp, nil
}

// fillFromUsers replaces missing names and avatars with local account data.
func (s *progressService) fillFromUsers(ctx context.Context, entries []dto.LeaderboardEntryDTO) {
	ids := []uuid.UUID{}
	for _, e := range entries {
		if e.Name != "" && e.Avatar != "" {
			continue
		}
		if id, err := uuid.Parse(e.UserId); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	users, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		s.logger.Warn("ProgressService", "Failed to load leaderboard users", map[string]interface{}{"error": err.Error()})
		return
	}
	byID := make(map[string]int, len(users))
	for i, u := range users {
		byID[u.Id.String()] = i
	}
	for i := range entries {
		idx, ok := byID[entries[i].UserId]
		if !ok {
			continue
		}
		if entries[i].Name == "" {
			entries[i].Name = users[idx].Name
		}
		if entries[i].Avatar == "" {
			entries[i].Avatar = users[idx].Avatar()
		}
	}
}
