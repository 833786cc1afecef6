package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"knowledge-hub-be/internal/bootstrap"
	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/migration"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/server"
	"knowledge-hub-be/internal/tracer"
	"knowledge-hub-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Tracer, disabled unless OTEL_ENABLED=true
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, "knowledge-hub-api")
	defer shutdownTracer(context.Background())

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	// local SQLite databases are created on first start; Postgres goes through cmd/migrate
	if !database.IsPostgres(gormDB) {
		if err := migration.Run(gormDB, sysLogger); err != nil {
			log.Panicf("Unable to migrate SQLite DB: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	if container.RunsEmbeddedWorkers(cfg.Queue) {
		go func() {
			log.Println("Background: Starting embedded queue workers...")
			if err := container.ConsumerService.Consume(ctx); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}
	go container.RetentionService.Run(ctx)

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
