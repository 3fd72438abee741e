package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/entity"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/events"
	"fundocs-be/pkg/pagination"
	"fundocs-be/pkg/vote"

	"github.com/google/uuid"
)

const (
	maxTipLength    = 500
	maxVoteAttempts = 3
)

type ITipService interface {
	List(ctx context.Context, viewer uuid.UUID, q dto.ListTipsQuery) (*pagination.Page[dto.TipDTO], error)
	Create(ctx context.Context, author *entity.User, req *dto.CreateTipRequest) (*dto.TipDTO, error)
	Delete(ctx context.Context, userID, tipID uuid.UUID) error
	Vote(ctx context.Context, voter *entity.User, tipID uuid.UUID, req *dto.VoteTipRequest) (*dto.TipDTO, error)
}

type tipService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewTipService(uowFactory unitofwork.RepositoryFactory, eventPublisher EventPublisher, log logger.ILogger) ITipService {
	return &tipService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func toTipDTO(t *entity.Tip, viewer uuid.UUID) dto.TipDTO {
	return dto.TipDTO{
		Id:           t.Id,
		AuthorId:     t.UserId,
		AuthorName:   t.AuthorName,
		AuthorAvatar: t.AuthorAvatar,
		Text:         t.Text,
		Votes:        t.Votes,
		MyVote:       string(t.VoteOf(viewer)),
		IsMine:       t.UserId == viewer,
		CreatedAt:    t.CreatedAt,
	}
}

func (s *tipService) List(ctx context.Context, viewer uuid.UUID, q dto.ListTipsQuery) (*pagination.Page[dto.TipDTO], error) {
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, err
	}
	tips, err := s.uowFactory.NewUnitOfWork(ctx).TipRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TipDTO, 0, len(tips))
	for _, t := range tips {
		items = append(items, toTipDTO(t, viewer))
	}
	// per_page=0 returns everything on one page
	page := pagination.Paginate(items, q.Page, q.PerPage)
	return &page, nil
}

func (s *tipService) Create(ctx context.Context, author *entity.User, req *dto.CreateTipRequest) (*dto.TipDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, serverutils.NewBadRequest("text is required")
	}
	if utf8.RuneCountInString(text) > maxTipLength {
		return nil, serverutils.NewBadRequest("text must be at most 500 characters")
	}

	tip := &entity.Tip{
		UserId:       author.Id,
		AuthorName:   author.Name,
		AuthorAvatar: author.Avatar(),
		Text:         text,
		Voters:       vote.Voters{},
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).TipRepository().Create(ctx, tip); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeTipCreated, map[string]interface{}{
		"tip_id":      tip.Id.String(),
		"user_id":     author.Id.String(),
		"author_name": author.Name,
		"text":        text,
	})

	out := toTipDTO(tip, author.Id)
	return &out, nil
}

func (s *tipService) Delete(ctx context.Context, userID, tipID uuid.UUID) error {
	repo := s.uowFactory.NewUnitOfWork(ctx).TipRepository()
	tip, err := repo.FindOne(ctx, specification.ByID{ID: tipID})
	if err != nil {
		return err
	}
	if tip == nil {
		return serverutils.NewNotFound("tip not found")
	}
	if tip.UserId != userID {
		return serverutils.NewForbidden("only the author can delete this tip")
	}
	return repo.Delete(ctx, tipID)
}

// Vote applies the tally rule with optimistic concurrency: the write only
// lands if nobody changed the tip since it was read.
func (s *tipService) Vote(ctx context.Context, voter *entity.User, tipID uuid.UUID, req *dto.VoteTipRequest) (*dto.TipDTO, error) {
	dir, err := vote.Parse(req.Direction)
	if err != nil {
		return nil, serverutils.NewBadRequest("direction must be up or down")
	}
	repo := s.uowFactory.NewUnitOfWork(ctx).TipRepository()
	voterID := voter.Id.String()

	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		tip, err := repo.FindOne(ctx, specification.ByID{ID: tipID})
		if err != nil {
			return nil, err
		}
		if tip == nil {
			return nil, serverutils.NewNotFound("tip not found")
		}
		if tip.Voters == nil {
			tip.Voters = vote.Voters{}
		}

		tip.Votes = tip.Voters.Cast(tip.Votes, voterID, dir)
		ok, err := repo.SaveVotes(ctx, tip)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Debug("TipService", "Vote lost a race, retrying", map[string]interface{}{"tip_id": tipID, "attempt": attempt})
			continue
		}

		if tip.UserId != voter.Id {
			publishEvent(ctx, s.eventPublisher, s.logger, events.TypeTipVoted, map[string]interface{}{
				"tip_id":     tip.Id.String(),
				"author_id":  tip.UserId.String(),
				"voter_id":   voterID,
				"voter_name": voter.Name,
				"direction":  string(tip.VoteOf(voter.Id)),
				"votes":      tip.Votes,
			})
		}
		out := toTipDTO(tip, voter.Id)
		return &out, nil
	}

	return nil, serverutils.NewConflict("tip is busy, please try again")
}
