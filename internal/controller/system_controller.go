package controller

import (
	"strconv"

	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/pkg/serverutils"
	"knowledge-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Logs(ctx *fiber.Ctx) error
}

type systemController struct {
	noteService service.INoteService
	logger      logger.ILogger
}

func NewSystemController(noteService service.INoteService, log logger.ILogger) ISystemController {
	return &systemController{
		noteService: noteService,
		logger:      log,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/system")
	h.Get("status", c.Status)
	h.Get("logs", c.Logs)
}

func (c *systemController) Status(ctx *fiber.Ctx) error {
	res, err := c.noteService.SystemStatus(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System status", res))
}

// Logs returns recent entries of the application log file, newest first.
func (c *systemController) Logs(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := c.logger.GetLogs(ctx.Query("level"), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", entries))
}
