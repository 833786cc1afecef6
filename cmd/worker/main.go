package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"knowledge-hub-be/internal/bootstrap"
	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/tracer"
	"knowledge-hub-be/pkg/database"
	"knowledge-hub-be/pkg/queue"
)

// The worker consumes the shared queue and enriches notes. Run as many as needed; the
// queue hands each job to one of them.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.InitTracer(cfg.Telemetry, "knowledge-hub-worker")
	defer shutdownTracer(context.Background())

	workerLogger := logger.NewZapLogger(cfg.App.WorkerLogFilePath, cfg.IsProduction())
	defer workerLogger.Sync()

	if cfg.Queue.Backend == queue.BackendMemory || cfg.Queue.Backend == queue.BackendNone {
		log.Fatalf("QUEUE_BACKEND=%s cannot be shared with a separate worker, use nats or redis", cfg.Queue.Backend)
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, workerLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	if container.ConsumerService == nil {
		log.Fatalf("Queue backend %s is unreachable", cfg.Queue.Backend)
	}

	log.Printf("✅ Worker consuming %s queue %q with %d workers", container.QueueBackend, cfg.Queue.Name, cfg.Queue.Workers)
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Worker stopped: %v", err)
	}
}
