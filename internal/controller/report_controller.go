package controller

import (
	"fmt"

	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
}

type reportController struct {
	service service.IReportService
	gate    *serverutils.SessionGate
}

func NewReportController(service service.IReportService, gate *serverutils.SessionGate) IReportController {
	return &reportController{service: service, gate: gate}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report")
	h.Use(c.gate.RequireVerified)
	h.Post("", c.Generate)
	h.Post("/export", c.Export)
}

func (c *reportController) Generate(ctx *fiber.Ctx) error {
	res, err := c.service.Generate(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Report generated", res))
}

// Export streams the file as a download rather than the JSON envelope.
func (c *reportController) Export(ctx *fiber.Ctx) error {
	var req dto.ExportReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}

	file, err := c.service.Export(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return ctx.Send(file.Body)
}
