package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/repository/cache"
	"fundocs-be/internal/repository/specification"
	"fundocs-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errInvalidToken = errors.New("invalid token")

// SessionManager issues access tokens backed by user_sessions rows and
// resolves them back. Deleting the row revokes the token.
type SessionManager struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.SessionCache
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionManager(uowFactory unitofwork.RepositoryFactory, sessionCache *cache.SessionCache, secret string, ttl time.Duration) *SessionManager {
	if secret == "" {
		secret = "default_secret"
	}
	return &SessionManager{
		uowFactory: uowFactory,
		cache:      sessionCache,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *SessionManager) Issue(ctx context.Context, user *entity.User, ipAddress, userAgent string) (string, time.Time, error) {
	now := m.now().UTC()
	session := &entity.UserSession{
		UserId:    user.Id,
		ExpiresAt: now.Add(m.ttl),
		IpAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	claims := jwt.MapClaims{
		"user_id":    user.Id.String(),
		"session_id": session.Id.String(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, session.ExpiresAt, nil
}

func (m *SessionManager) Resolve(ctx context.Context, tokenStr string) (*entity.User, *entity.UserSession, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil, errInvalidToken
	}
	sessionIDStr, _ := claims["session_id"].(string)
	userIDStr, _ := claims["user_id"].(string)
	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return nil, nil, errInvalidToken
	}

	if entry, ok := m.cache.Get(sessionID.String()); ok {
		if entry.User.Id.String() != userIDStr || entry.Session.Expired(m.now()) {
			return nil, nil, errInvalidToken
		}
		return entry.User, entry.Session, nil
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.NotExpired{Now: m.now().UTC()},
	)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.UserId.String() != userIDStr {
		return nil, nil, errInvalidToken
	}
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.UserId})
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, errInvalidToken
	}

	m.cache.Save(sessionID.String(), &cache.SessionEntry{Session: session, User: user})
	return user, session, nil
}

func (m *SessionManager) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	m.cache.Delete(sessionID.String())
	return m.uowFactory.NewUnitOfWork(ctx).SessionRepository().Delete(ctx, sessionID)
}

// Forget drops cached lookups for userID so the next request re-reads the
// user row.
func (m *SessionManager) Forget(userID uuid.UUID) {
	m.cache.DeleteUser(userID.String())
}
