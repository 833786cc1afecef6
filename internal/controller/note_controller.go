package controller

import (
	"knowledge-hub-be/internal/dto"
	"knowledge-hub-be/internal/pkg/serverutils"
	"knowledge-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reprocess(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("delete", c.Delete)
	h.Get(":id", c.Show)
	h.Post(":id/reprocess", c.Reprocess)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

// List doubles as search: ?q= ranks the active notes by similarity, ?top_k= caps the result.
func (c *noteController) List(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	var req dto.IdsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Delete(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Notes moved to recycle bin", res))
}

func (c *noteController) Reprocess(ctx *fiber.Ctx) error {
	id, err := noteId(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Reprocess(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Note submitted for enrichment", nil))
}

func noteId(ctx *fiber.Ctx) (uint, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}
	return uint(id), nil
}
