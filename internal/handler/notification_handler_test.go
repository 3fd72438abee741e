package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	internalWS "fundocs-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct{ user *entity.User }

func (r staticResolver) ResolveSession(_ context.Context, token string) (*entity.User, *entity.UserSession, error) {
	if token != "good" {
		return nil, nil, errors.New("bad token")
	}
	return r.user, &entity.UserSession{Id: uuid.New(), UserId: r.user.Id}, nil
}

func newApp() *fiber.App {
	log := logger.NewNopLogger()
	gate := serverutils.NewSessionGate(staticResolver{user: &entity.User{Id: uuid.New()}})
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	NewNotificationHandler(internalWS.NewHub(nil, log), gate, log).RegisterRoutes(app)
	return app
}

func TestServeWsRequiresSession(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/ws?token=bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRequiresUpgrade(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/ws?token=good", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
