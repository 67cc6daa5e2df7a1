package controller

import (
	"poultry-diagnose-be/internal/dto"
	"poultry-diagnose-be/internal/pkg/serverutils"
	"poultry-diagnose-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	RefreshKnowledge(ctx *fiber.Ctx) error
}

type adminController struct {
	refreshService service.IRefreshService
	jwtSecret      string
}

func NewAdminController(refreshService service.IRefreshService, jwtSecret string) IAdminController {
	return &adminController{refreshService: refreshService, jwtSecret: jwtSecret}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("/knowledge/refresh", c.RefreshKnowledge)
}

// RefreshKnowledge only queues the refresh; the response does not wait for the reload.
func (c *adminController) RefreshKnowledge(ctx *fiber.Ctx) error {
	subject, _ := ctx.Locals("subject").(string)

	id, err := c.refreshService.Request(ctx.UserContext(), "admin:"+subject)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Knowledge refresh queued", dto.RefreshResponse{
		RequestId: id,
		Queued:    true,
	}))
}
