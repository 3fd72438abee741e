package controller

import (
	"fundocs-be/internal/dto"
	"fundocs-be/internal/pkg/serverutils"
	"fundocs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExploreController interface {
	RegisterRoutes(r fiber.Router)
	Find(ctx *fiber.Ctx) error
	Categories(ctx *fiber.Ctx) error
}

type exploreController struct {
	service service.IExploreService
}

func NewExploreController(service service.IExploreService) IExploreController {
	return &exploreController{service: service}
}

// Explore is public; the catalog holds no user data.
func (c *exploreController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/explore")
	h.Get("", c.Find)
	h.Get("/categories", c.Categories)
}

func (c *exploreController) Find(ctx *fiber.Ctx) error {
	var q dto.ExploreQuery
	if err := ctx.QueryParser(&q); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}
	return ctx.JSON(serverutils.SuccessResponse("Explore", c.service.Find(q)))
}

func (c *exploreController) Categories(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Categories", c.service.Categories()))
}
