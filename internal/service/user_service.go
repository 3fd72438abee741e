package service

import (
	"context"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/entity"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/contentapi"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const profileRecentDocs = 3

type IUserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateAvatar(ctx context.Context, user *entity.User, upload *dto.AvatarUpload) (*dto.AvatarResponse, error)
	DeleteAccount(ctx context.Context, user *entity.User) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	api        contentapi.API
	documents  IDocumentService
	progress   IProgressService
	avatars    *AvatarService
	sessions   *SessionManager
	logger     logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	api contentapi.API,
	documents IDocumentService,
	progress IProgressService,
	avatars *AvatarService,
	sessions *SessionManager,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory: uowFactory,
		api:        api,
		documents:  documents,
		progress:   progress,
		avatars:    avatars,
		sessions:   sessions,
		logger:     log,
	}
}

// GetProfile loads the account, recent docs and progress concurrently.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	var (
		user      *entity.User
		docs      []dto.DocumentDTO
		docCount  int
		dashboard *dto.DashboardResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.uowFactory.NewUnitOfWork(gctx).UserRepository().FindOne(gctx, specification.ByID{ID: userID})
		if err != nil {
			return err
		}
		if u == nil {
			return serverutils.NewNotFound("user not found")
		}
		user = u
		return nil
	})
	g.Go(func() error {
		page, err := s.documents.List(gctx, userID, dto.ListDocumentsQuery{Sort: "newest", PerPage: profileRecentDocs})
		if err != nil {
			return err
		}
		docs, docCount = page.Items, page.Total
		return nil
	})
	g.Go(func() error {
		d, err := s.progress.Dashboard(gctx, userID, 0)
		if err != nil {
			return err
		}
		dashboard = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		User:     ToUserDTO(user),
		Progress: *dashboard,
		Docs:     docs,
		DocCount: docCount,
	}, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, user *entity.User, upload *dto.AvatarUpload) (*dto.AvatarResponse, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, serverutils.NewBadRequest("avatar is required")
	}
	url, key, err := s.avatars.Upload(ctx, user.Id, upload.Data, upload.ContentType)
	if err != nil {
		return nil, err
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().UpdateAvatar(ctx, user.Id, &url, &key); err != nil {
		s.avatars.Remove(ctx, &key)
		return nil, err
	}
	s.avatars.Remove(ctx, user.AvatarKey)
	s.sessions.Forget(user.Id)

	return &dto.AvatarResponse{AvatarURL: url}, nil
}

// DeleteAccount removes upstream data first; local rows are only deleted
// once the content API confirmed.
func (s *userService) DeleteAccount(ctx context.Context, user *entity.User) error {
	if err := s.api.DeleteAccount(ctx, user.Id.String()); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TipRepository().DeleteByUser(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.SessionRepository().DeleteByUser(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteUserProviders(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.UserRepository().Delete(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.avatars.Remove(ctx, user.AvatarKey)
	s.sessions.Forget(user.Id)
	s.progress.Invalidate(ctx, user.Id.String())

	s.logger.Info("UserService", "Account deleted", map[string]interface{}{"user_id": user.Id})
	return nil
}
