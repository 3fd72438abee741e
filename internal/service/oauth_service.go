package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fundocs-be/internal/config"
	"fundocs-be/internal/dto"
	"fundocs-be/internal/entity"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"
	"fundocs-be/pkg/database"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	providerGoogle     = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateLifetime = 10 * time.Minute
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider, state, code, ipAddress, userAgent string) (*dto.AuthResponse, error)
}

// GoogleProfile is the subset of the userinfo response we use.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type oauthService struct {
	uowFactory  unitofwork.RepositoryFactory
	sessions    *SessionManager
	googleConf  *oauth2.Config
	userInfoURL string
	states      *gocache.Cache
	logger      logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, sessions *SessionManager, cfg config.OAuthConfig, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
	return &oauthService{
		uowFactory:  uowFactory,
		sessions:    sessions,
		googleConf:  conf,
		userInfoURL: googleUserInfoURL,
		states:      gocache.New(oauthStateLifetime, 2*oauthStateLifetime),
		logger:      log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != providerGoogle {
		return "", serverutils.NewBadRequest("unsupported provider")
	}
	if s.googleConf.ClientID == "" {
		return "", serverutils.NewBadRequest("google sign-in is not configured")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	s.states.Set(state, provider, gocache.DefaultExpiration)

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, state, code, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	if provider != providerGoogle {
		return nil, serverutils.NewBadRequest("unsupported provider")
	}
	if _, ok := s.states.Get(state); !ok || state == "" {
		return nil, serverutils.NewBadRequest("invalid oauth state")
	}
	s.states.Delete(state)

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("OAuthService", "Code exchange failed", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.NewUnauthorized("google sign-in failed")
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		s.logger.Warn("OAuthService", "Failed to read google profile", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.NewBadGateway("failed to read google profile")
	}

	user, err := s.linkAccount(ctx, profile)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		Redirect:    redirectProfile,
		User:        ToUserDTO(user),
	}, nil
}

func (s *oauthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	resp, err := s.googleConf.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo is missing id or email")
	}
	return &profile, nil
}

// linkAccount finds the user behind a Google identity, linking by email or
// creating a verified account when none exists.
func (s *oauthService) linkAccount(ctx context.Context, profile *GoogleProfile) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := uow.UserRepository().FindUserProvider(ctx, specification.ByProvider{Name: providerGoogle, ProviderUserID: profile.ID})
	if err != nil {
		return nil, err
	}
	if link != nil {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: link.UserId})
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now().UTC()
	if user == nil {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &entity.User{
			Name:            name,
			Email:           email,
			EmailVerified:   true,
			EmailVerifiedAt: &now,
		}
		if profile.Picture != "" {
			picture := profile.Picture
			user.AvatarURL = &picture
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, serverutils.NewConflict("email already registered")
			}
			return nil, err
		}
		s.logger.Info("OAuthService", "Created user from google profile", map[string]interface{}{"user_id": user.Id})
	} else if !user.EmailVerified {
		// google already proved ownership of the address
		if err := uow.UserRepository().MarkVerified(ctx, user.Id, now); err != nil {
			return nil, err
		}
		user.EmailVerified = true
		user.EmailVerifiedAt = &now
		if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
			return nil, err
		}
	}

	if err := uow.UserRepository().SaveUserProvider(ctx, &entity.UserProvider{
		UserId:         user.Id,
		ProviderName:   providerGoogle,
		ProviderUserId: profile.ID,
		AvatarURL:      profile.Picture,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.sessions.Forget(user.Id)
	return user, nil
}
