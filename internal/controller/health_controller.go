package controller

import (
	"poultry-diagnose-be/internal/dto"
	"poultry-diagnose-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Ready(ctx *fiber.Ctx) error
}

type healthController struct {
	knowledgeService service.IKnowledgeService
}

func NewHealthController(knowledgeService service.IKnowledgeService) IHealthController {
	return &healthController{knowledgeService: knowledgeService}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/ready", c.Ready)
}

// Health is the liveness probe; it never touches a collaborator.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{Status: "ok"})
}

func (c *healthController) Ready(ctx *fiber.Ctx) error {
	if err := c.knowledgeService.Ready(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(dto.HealthResponse{Status: "ready"})
}
