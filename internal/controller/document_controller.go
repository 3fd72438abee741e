package controller

import (
	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	SubmitChallenge(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	gate    *serverutils.SessionGate
}

func NewDocumentController(service service.IDocumentService, gate *serverutils.SessionGate) IDocumentController {
	return &documentController{service: service, gate: gate}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/docs")
	h.Use(c.gate.RequireVerified)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/challenges", c.SubmitChallenge)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document generated", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	var q dto.ListDocumentsQuery
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.UserID(ctx), q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document deleted", nil))
}

func (c *documentController) SubmitChallenge(ctx *fiber.Ctx) error {
	var req dto.SubmitChallengeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	res, err := c.service.SubmitChallenge(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Solution reviewed", res))
}
