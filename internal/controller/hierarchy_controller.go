package controller

import (
	"codeframe-be/internal/dto"
	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/internal/pkg/serverutils"
	"codeframe-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IHierarchyController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ConfirmBrand(ctx *fiber.Ctx) error
}

type hierarchyController struct {
	hierarchyService service.IHierarchyService
}

func NewHierarchyController(hierarchyService service.IHierarchyService) IHierarchyController {
	return &hierarchyController{
		hierarchyService: hierarchyService,
	}
}

func (c *hierarchyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/codeframe/v1")
	h.Get("hierarchy/:job_id", c.Show)
	h.Patch("hierarchy/node/:node_id", c.Rename)
	h.Delete("hierarchy/node/:node_id", c.Delete)
	h.Post("confirm-brand", c.ConfirmBrand)
}

func (c *hierarchyController) Show(ctx *fiber.Ctx) error {
	jobId, err := uuid.Parse(ctx.Params("job_id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid job id")
	}

	res, err := c.hierarchyService.GetTree(ctx.Context(), jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Codeframe hierarchy", res))
}

func (c *hierarchyController) Rename(ctx *fiber.Ctx) error {
	nodeId, err := uuid.Parse(ctx.Params("node_id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid node id")
	}

	var req dto.RenameNodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}
	req.Id = nodeId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.hierarchyService.Rename(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Node renamed", nil))
}

func (c *hierarchyController) Delete(ctx *fiber.Ctx) error {
	nodeId, err := uuid.Parse(ctx.Params("node_id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid node id")
	}

	if err := c.hierarchyService.Delete(ctx.Context(), nodeId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Node deleted", nil))
}

func (c *hierarchyController) ConfirmBrand(ctx *fiber.Ctx) error {
	var req dto.ConfirmBrandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.hierarchyService.ConfirmBrand(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Brand confirmed", res))
}
