package controller

import (
	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITipController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Vote(ctx *fiber.Ctx) error
}

type tipController struct {
	service service.ITipService
	gate    *serverutils.SessionGate
}

func NewTipController(service service.ITipService, gate *serverutils.SessionGate) ITipController {
	return &tipController{service: service, gate: gate}
}

func (c *tipController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tips")
	h.Use(c.gate.RequireVerified)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/vote", c.Vote)
}

func tipID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewNotFound("tip not found")
	}
	return id, nil
}

func (c *tipController) List(ctx *fiber.Ctx) error {
	var q dto.ListTipsQuery
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.UserID(ctx), q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tips", res))
}

func (c *tipController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateTipRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.CurrentUser(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Tip shared", res))
}

func (c *tipController) Delete(ctx *fiber.Ctx) error {
	id, err := tipID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), serverutils.UserID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tip deleted", nil))
}

func (c *tipController) Vote(ctx *fiber.Ctx) error {
	id, err := tipID(ctx)
	if err != nil {
		return err
	}
	var req dto.VoteTipRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.Vote(ctx.UserContext(), serverutils.CurrentUser(ctx), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Vote recorded", res))
}
