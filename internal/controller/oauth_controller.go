package controller

import (
	"net/url"
	"strings"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	logger    logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, log logger.ILogger) IOAuthController {
	return &oauthController{
		service:   service,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    log,
	}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/oauth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	loginURL, err := c.service.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

// Callback finishes the provider flow and hands the session token to the
// frontend through the redirect URL. Failures land on the login page.
func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	if denied := ctx.Query("error"); denied != "" {
		return c.fail(ctx, provider, denied)
	}
	code := ctx.Query("code")
	if code == "" {
		return c.fail(ctx, provider, "missing authorization code")
	}

	res, err := c.service.HandleCallback(ctx.UserContext(), provider, ctx.Query("state"), code, ctx.IP(), ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		msg := "sign-in failed"
		if appErr, ok := serverutils.AsAppError(err); ok {
			msg = appErr.Message
		}
		return c.fail(ctx, provider, msg)
	}

	c.logger.Info("OAuthController", "OAuth login succeeded", map[string]interface{}{"provider": provider, "user_id": res.User.Id})
	return ctx.Redirect(c.clientURL+res.Redirect+"?token="+url.QueryEscape(res.AccessToken), fiber.StatusTemporaryRedirect)
}

func (c *oauthController) fail(ctx *fiber.Ctx, provider, reason string) error {
	c.logger.Warn("OAuthController", "OAuth login failed", map[string]interface{}{"provider": provider, "reason": reason})
	return ctx.Redirect(c.clientURL+serverutils.LoginRedirect+"?error="+url.QueryEscape(reason), fiber.StatusTemporaryRedirect)
}
