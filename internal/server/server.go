package server

import (
	"context"

	"knowledge-hub-be/internal/bootstrap"
	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "knowledge-hub",
		BodyLimit:    1 * 1024 * 1024, // notes are plain text
		ErrorHandler: serverutils.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"dispatch_mode": container.Executor.Mode(),
		}))
	})

	api := app.Group("/api")
	container.NoteController.RegisterRoutes(api)
	container.RecycleBinController.RegisterRoutes(api)
	container.SystemController.RegisterRoutes(api)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run blocks until the listener stops.
func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Listening", map[string]interface{}{
		"port":          s.cfg.App.Port,
		"dispatch_mode": s.container.Executor.Mode(),
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
