package serverutils

import (
	"context"
	"strings"

	"fundocs-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LoginRedirect   = "/login"
	PendingRedirect = "/verify?mode=pending"

	localUserID    = "user_id"
	localSessionID = "session_id"
	localUser      = "user"
)

// SessionResolver turns an access token into the live session and its user.
// It returns an error when the token is invalid, revoked or expired.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entity.User, *entity.UserSession, error)
}

type SessionGate struct {
	resolver SessionResolver
}

func NewSessionGate(resolver SessionResolver) *SessionGate {
	return &SessionGate{resolver: resolver}
}

func unauthenticated() *AppError {
	return NewUnauthorized("Authentication required").WithData(fiber.Map{"redirect": LoginRedirect})
}

// RequireSession rejects requests without a live session with 401.
func (g *SessionGate) RequireSession(ctx *fiber.Ctx) error {
	if err := g.authenticate(ctx); err != nil {
		return err
	}
	return ctx.Next()
}

// RequireVerified runs the session check, then rejects unverified users
// with 403.
func (g *SessionGate) RequireVerified(ctx *fiber.Ctx) error {
	if err := g.authenticate(ctx); err != nil {
		return err
	}
	if !CurrentUser(ctx).EmailVerified {
		return NewForbidden("Email verification required").WithData(fiber.Map{"redirect": PendingRedirect})
	}
	return ctx.Next()
}

func (g *SessionGate) authenticate(ctx *fiber.Ctx) error {
	if CurrentUser(ctx) != nil {
		return nil
	}
	token := BearerToken(ctx)
	if token == "" {
		return unauthenticated()
	}
	user, session, err := g.resolver.ResolveSession(ctx.UserContext(), token)
	if err != nil || user == nil || session == nil {
		return unauthenticated()
	}

	ctx.Locals(localUserID, user.Id.String())
	ctx.Locals(localSessionID, session.Id.String())
	ctx.Locals(localUser, user)
	return nil
}

// BearerToken reads the Authorization header, falling back to ?token= for
// websocket upgrades.
func BearerToken(ctx *fiber.Ctx) string {
	header := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(ctx.Query("token"))
}

func UserID(ctx *fiber.Ctx) uuid.UUID {
	s, _ := ctx.Locals(localUserID).(string)
	id, _ := uuid.Parse(s)
	return id
}

func SessionID(ctx *fiber.Ctx) uuid.UUID {
	s, _ := ctx.Locals(localSessionID).(string)
	id, _ := uuid.Parse(s)
	return id
}

func CurrentUser(ctx *fiber.Ctx) *entity.User {
	u, _ := ctx.Locals(localUser).(*entity.User)
	return u
}
