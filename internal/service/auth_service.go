package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/entity"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/mailer"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/database"
	"fundocs-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	redirectProfile = "/profile"
	redirectPending = serverutils.PendingRedirect
)

type IAuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest, upload *dto.AvatarUpload, ipAddress, userAgent string) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, user *entity.User) error
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Me(user *entity.User) *dto.MeResponse
	ResolveSession(ctx context.Context, token string) (*entity.User, *entity.UserSession, error)
}

type authService struct {
	uowFactory      unitofwork.RepositoryFactory
	sessions        *SessionManager
	avatars         *AvatarService
	emailService    mailer.IEmailService
	eventPublisher  EventPublisher
	verificationTTL time.Duration
	logger          logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *SessionManager,
	avatars *AvatarService,
	emailService mailer.IEmailService,
	eventPublisher EventPublisher,
	verificationTTL time.Duration,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:      uowFactory,
		sessions:        sessions,
		avatars:         avatars,
		emailService:    emailService,
		eventPublisher:  eventPublisher,
		verificationTTL: verificationTTL,
		logger:          log,
	}
}

// newVerificationSecret returns the secret mailed to the user and the hash
// that is stored.
func newVerificationSecret() (secret, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(b)
	return secret, hashSecret(secret), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(secret)))
	return hex.EncodeToString(sum[:])
}

func ToUserDTO(u *entity.User) dto.UserDTO {
	return dto.UserDTO{
		Id:        u.Id,
		Name:      u.Name,
		Email:     u.Email,
		Verified:  u.EmailVerified,
		AvatarURL: u.Avatar(),
		CreatedAt: u.CreatedAt,
	}
}

func redirectFor(u *entity.User) string {
	if u.EmailVerified {
		return redirectProfile
	}
	return redirectPending
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest, upload *dto.AvatarUpload, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	if upload != nil {
		if err := CheckUpload(upload.Data, upload.ContentType); err != nil {
			return nil, err
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.NewConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashStr,
	}

	secret, secretHash, err := newVerificationSecret()
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, serverutils.NewConflict("email already registered")
		}
		return nil, err
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, &entity.EmailVerificationToken{
		UserId:    user.Id,
		TokenHash: secretHash,
		ExpiresAt: time.Now().UTC().Add(s.verificationTTL),
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.attachAvatar(ctx, user, upload)

	token, expiresAt, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.sendVerification(user, secret)

	s.logger.Info("AuthService", "User signed up", map[string]interface{}{"user_id": user.Id})
	return &dto.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Redirect:    redirectPending,
		User:        ToUserDTO(user),
	}, nil
}

// attachAvatar stores the uploaded avatar or falls back to a generated one.
// A user without an avatar is still a valid signup.
func (s *authService) attachAvatar(ctx context.Context, user *entity.User, upload *dto.AvatarUpload) {
	if s.avatars == nil {
		return
	}
	var url, key string
	var err error
	if upload != nil {
		url, key, err = s.avatars.Upload(ctx, user.Id, upload.Data, upload.ContentType)
		if err != nil {
			s.logger.Warn("AuthService", "Avatar upload failed, generating one", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
		}
	}
	if upload == nil || err != nil {
		url, key, err = s.avatars.Generate(ctx, user.Id, user.Name)
		if err != nil {
			s.logger.Warn("AuthService", "Avatar generation failed", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
			return
		}
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().UpdateAvatar(ctx, user.Id, &url, &key); err != nil {
		s.logger.Warn("AuthService", "Failed to save avatar", map[string]interface{}{"user_id": user.Id, "error": err.Error()})
		s.avatars.Remove(ctx, &key)
		return
	}
	user.AvatarURL = &url
	user.AvatarKey = &key
}

func (s *authService) sendVerification(user *entity.User, secret string) {
	if s.emailService == nil {
		return
	}
	go func() {
		if err := s.emailService.SendVerification(user.Email, user.Name, user.Id.String(), secret); err != nil {
			s.logger.Error("AuthService", "Failed to send verification email", map[string]interface{}{
				"user_id": user.Id,
				"error":   err.Error(),
			})
		}
	}()
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, serverutils.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Redirect:    redirectFor(user),
		User:        ToUserDTO(user),
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	userID, _ := uuid.Parse(req.UserId)
	invalid := serverutils.NewBadRequest("verification link is invalid or has expired")

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return err
	}
	if user == nil {
		return invalid
	}
	if user.EmailVerified {
		return nil
	}

	token, err := uow.UserRepository().FindEmailVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByTokenHash{Hash: hashSecret(req.Secret)},
		specification.NotExpired{Now: time.Now().UTC()},
	)
	if err != nil {
		return err
	}
	if token == nil {
		return invalid
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkVerified(ctx, user.Id, time.Now().UTC()); err != nil {
		return err
	}
	if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.sessions.Forget(user.Id)
	publishEvent(ctx, s.eventPublisher, s.logger, events.TypeUserVerified, map[string]interface{}{
		"user_id": user.Id.String(),
		"name":    user.Name,
	})
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, user *entity.User) error {
	if user.EmailVerified {
		return serverutils.NewBadRequest("email already verified")
	}
	secret, secretHash, err := newVerificationSecret()
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, &entity.EmailVerificationToken{
		UserId:    user.Id,
		TokenHash: secretHash,
		ExpiresAt: time.Now().UTC().Add(s.verificationTTL),
	}); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendVerification(user.Email, user.Name, user.Id.String(), secret); err != nil {
			return serverutils.NewInternal("failed to send verification email", err)
		}
	}
	return nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *authService) Me(user *entity.User) *dto.MeResponse {
	return &dto.MeResponse{User: ToUserDTO(user), Verified: user.EmailVerified}
}

func (s *authService) ResolveSession(ctx context.Context, token string) (*entity.User, *entity.UserSession, error) {
	return s.sessions.Resolve(ctx, token)
}
