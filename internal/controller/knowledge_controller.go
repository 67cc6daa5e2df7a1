package controller

import (
	"net/url"

	"poultry-diagnose-be/internal/pkg/serverutils"
	"poultry-diagnose-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	DiseasesForSymptom(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{knowledgeService: knowledgeService}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge")
	h.Get("/stats", c.Stats)
	h.Get("/symptoms/:name/diseases", c.DiseasesForSymptom)
}

func (c *knowledgeController) DiseasesForSymptom(ctx *fiber.Ctx) error {
	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil {
		name = ctx.Params("name")
	}

	res, err := c.knowledgeService.DiseasesForSymptom(ctx.UserContext(), name)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get diseases", res))
}

func (c *knowledgeController) Stats(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge stats", res))
}
