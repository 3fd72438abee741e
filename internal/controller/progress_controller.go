package controller

import (
	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProgressController interface {
	RegisterRoutes(r fiber.Router)
	Dashboard(ctx *fiber.Ctx) error
	Badges(ctx *fiber.Ctx) error
	AwardXP(ctx *fiber.Ctx) error
	Leaderboard(ctx *fiber.Ctx) error
}

type progressController struct {
	service service.IProgressService
	gate    *serverutils.SessionGate
}

func NewProgressController(service service.IProgressService, gate *serverutils.SessionGate) IProgressController {
	return &progressController{service: service, gate: gate}
}

func (c *progressController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/progress")
	h.Use(c.gate.RequireVerified)
	h.Get("", c.Dashboard)
	h.Get("/badges", c.Badges)
	h.Post("/xp", c.AwardXP)

	r.Get("/leaderboard", c.gate.RequireVerified, c.Leaderboard)
}

func (c *progressController) Dashboard(ctx *fiber.Ctx) error {
	res, err := c.service.Dashboard(ctx.UserContext(), serverutils.UserID(ctx), ctx.QueryInt("activities", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Progress", res))
}

func (c *progressController) Badges(ctx *fiber.Ctx) error {
	res, err := c.service.Badges(ctx.UserContext(), serverutils.UserID(ctx), ctx.Query("filter"), ctx.Query("search"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Badges", res))
}

func (c *progressController) AwardXP(ctx *fiber.Ctx) error {
	var req dto.AwardXPRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.AwardXP(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("XP awarded", res))
}

func (c *progressController) Leaderboard(ctx *fiber.Ctx) error {
	var q dto.LeaderboardQuery
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}

	res, err := c.service.Leaderboard(ctx.UserContext(), serverutils.UserID(ctx), q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Leaderboard", res))
}
