package controller

import (
	"knowledge-hub-be/internal/dto"
	"knowledge-hub-be/internal/pkg/serverutils"
	"knowledge-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecycleBinController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Empty(ctx *fiber.Ctx) error
	Sweep(ctx *fiber.Ctx) error
}

type recycleBinController struct {
	noteService      service.INoteService
	retentionService service.IRetentionService
}

func NewRecycleBinController(noteService service.INoteService, retentionService service.IRetentionService) IRecycleBinController {
	return &recycleBinController{
		noteService:      noteService,
		retentionService: retentionService,
	}
}

func (c *recycleBinController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/bin")
	h.Get("", c.List)
	h.Delete("", c.Empty)
	h.Post("restore", c.Restore)
	h.Post("delete", c.Delete)
	h.Post("sweep", c.Sweep)
}

func (c *recycleBinController) List(ctx *fiber.Ctx) error {
	res, err := c.noteService.ListDeleted(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list recycle bin", res))
}

func (c *recycleBinController) Restore(ctx *fiber.Ctx) error {
	req, err := parseIds(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Restore(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notes restored", res))
}

func (c *recycleBinController) Delete(ctx *fiber.Ctx) error {
	req, err := parseIds(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.HardDelete(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notes permanently deleted", res))
}

func (c *recycleBinController) Empty(ctx *fiber.Ctx) error {
	res, err := c.noteService.EmptyBin(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recycle bin emptied", res))
}

func (c *recycleBinController) Sweep(ctx *fiber.Ctx) error {
	res, err := c.retentionService.Sweep(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cleanup finished", res))
}

func parseIds(ctx *fiber.Ctx) (*dto.IdsRequest, error) {
	var req dto.IdsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}
