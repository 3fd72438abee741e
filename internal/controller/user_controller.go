package controller

import (
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateAvatar(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
	gate    *serverutils.SessionGate
}

func NewUserController(service service.IUserService, gate *serverutils.SessionGate) IUserController {
	return &userController{service: service, gate: gate}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user")
	h.Use(c.gate.RequireVerified)
	h.Get("/profile", c.GetProfile)
	h.Put("/avatar", c.UpdateAvatar)
	h.Delete("/account", c.DeleteAccount)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.service.GetProfile(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

func (c *userController) UpdateAvatar(ctx *fiber.Ctx) error {
	upload, err := readUpload(ctx, "avatar")
	if err != nil {
		return err
	}
	if upload == nil {
		return serverutils.NewBadRequest("avatar file is required")
	}

	res, err := c.service.UpdateAvatar(ctx.UserContext(), serverutils.CurrentUser(ctx), upload)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Avatar updated", res))
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	if err := c.service.DeleteAccount(ctx.UserContext(), serverutils.CurrentUser(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Account deleted", fiber.Map{"redirect": serverutils.LoginRedirect}))
}
