package controller

import (
	"io"
	"strings"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"
	"fundocs-be/pkg/avatar"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Signup(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	ResendVerification(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
	gate    *serverutils.SessionGate
}

func NewAuthController(service service.IAuthService, gate *serverutils.SessionGate) IAuthController {
	return &authController{service: service, gate: gate}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/signup", c.Signup)
	h.Post("/login", c.Login)
	h.Post("/verify", c.VerifyEmail)
	h.Post("/verify/resend", c.gate.RequireSession, c.ResendVerification)
	h.Post("/logout", c.gate.RequireSession, c.Logout)
	h.Get("/me", c.gate.RequireSession, c.Me)
}

func isMultipart(ctx *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(ctx.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// readUpload returns the named multipart file, or nil when the field is absent.
func readUpload(ctx *fiber.Ctx, field string) (*dto.AvatarUpload, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil, nil
	}
	if fh.Size > avatar.MaxUploadBytes {
		return nil, serverutils.NewBadRequest("avatar must be 2MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, serverutils.NewBadRequest("avatar could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, avatar.MaxUploadBytes+1))
	if err != nil {
		return nil, serverutils.NewBadRequest("avatar could not be read")
	}
	return &dto.AvatarUpload{
		Data:        data,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}, nil
}

func (c *authController) Signup(ctx *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	var upload *dto.AvatarUpload
	if isMultipart(ctx) {
		var err error
		if upload, err = readUpload(ctx, "avatar"); err != nil {
			return err
		}
	}

	res, err := c.service.Signup(ctx.UserContext(), &req, upload, ctx.IP(), ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Account created. Check your inbox to verify your email.", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.Login(ctx.UserContext(), &req, ctx.IP(), ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	if err := c.service.VerifyEmail(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Email verified successfully", fiber.Map{"redirect": "/login"}))
}

func (c *authController) ResendVerification(ctx *fiber.Ctx) error {
	if err := c.service.ResendVerification(ctx.UserContext(), serverutils.CurrentUser(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Verification email sent", nil))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	if err := c.service.Logout(ctx.UserContext(), serverutils.SessionID(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Logged out", fiber.Map{"redirect": serverutils.LoginRedirect}))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Current user", c.service.Me(serverutils.CurrentUser(ctx))))
}
