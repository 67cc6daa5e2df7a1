package controller

import (
	"poultry-diagnose-be/internal/dto"
	"poultry-diagnose-be/internal/pkg/serverutils"
	"poultry-diagnose-be/internal/service"
	"poultry-diagnose-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type IDiagnoseController interface {
	RegisterRoutes(r fiber.Router)
	Diagnose(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type diagnoseController struct {
	diagnoseService service.IDiagnoseService
}

func NewDiagnoseController(diagnoseService service.IDiagnoseService) IDiagnoseController {
	return &diagnoseController{diagnoseService: diagnoseService}
}

func (c *diagnoseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/diagnose", c.Diagnose)
	h.Post("", c.Diagnose)
	h.Get("/session", c.Session)
}

// Diagnose answers with the bare turn response, the shape the upstream dialogue platform consumes.
func (c *diagnoseController) Diagnose(ctx *fiber.Ctx) error {
	var req dto.DiagnoseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("diagnose.BodyParser", "request body must be a JSON object")
	}

	res, err := c.diagnoseService.Diagnose(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *diagnoseController) Session(ctx *fiber.Ctx) error {
	var q dto.SessionQuery
	if err := ctx.QueryParser(&q); err != nil {
		return apperror.Validation("diagnose.QueryParser", err.Error())
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.diagnoseService.Session(ctx.UserContext(), q.UserId, q.SessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}
