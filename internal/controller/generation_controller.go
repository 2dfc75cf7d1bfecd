package controller

import (
	"codeframe-be/internal/dto"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/serverutils"
	"codeframe-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	ListJobs(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	statusService     service.IStatusService
}

func NewGenerationController(
	generationService service.IGenerationService,
	statusService service.IStatusService,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		statusService:     statusService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/codeframe/v1")
	h.Post("generate", c.Generate)
	h.Post("generate/:job_id/cancel", c.Cancel)
	h.Get("status/:job_id", c.Status)
	h.Get("jobs", c.ListJobs)
}

func (c *generationController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Generation job enqueued", res))
}

func (c *generationController) Status(ctx *fiber.Ctx) error {
	jobId, err := uuid.Parse(ctx.Params("job_id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid job id")
	}

	res, err := c.statusService.GetStatus(ctx.Context(), jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Job status", res))
}

func (c *generationController) ListJobs(ctx *fiber.Ctx) error {
	req := dto.ListJobsRequest{
		Status: ctx.Query("status"),
		Limit:  ctx.QueryInt("limit"),
		Offset: ctx.QueryInt("offset"),
	}
	if raw := ctx.Query("category_id"); raw != "" {
		categoryId, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.New(apperrors.KindValidation, "invalid category id")
		}
		req.CategoryId = &categoryId
	}

	res, err := c.statusService.ListJobs(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Jobs", res))
}

func (c *generationController) Cancel(ctx *fiber.Ctx) error {
	jobId, err := uuid.Parse(ctx.Params("job_id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid job id")
	}

	if err := c.generationService.Cancel(ctx.Context(), jobId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Cancellation requested", nil))
}
