package service

import (
	"context"
	"errors"
	"time"

	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/queue"
)

// IConsumerService is the queued-mode worker: it pulls note ids off the queue and runs the
// dispatcher for each of them.
type IConsumerService interface {
	// Consume blocks until ctx is cancelled or the queue fails.
	Consume(ctx context.Context) error
}

type consumerService struct {
	queue      queue.Queue
	workers    int
	dispatcher IDispatcher
	logger     logger.ILogger
}

func NewConsumerService(q queue.Queue, workers int, dispatcher IDispatcher, log logger.ILogger) IConsumerService {
	if workers <= 0 {
		workers = 1
	}
	return &consumerService{
		queue:      q,
		workers:    workers,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	cs.logger.Info("Worker", "Consuming enrichment jobs", map[string]interface{}{
		"backend": cs.queue.Backend(),
		"workers": cs.workers,
	})

	err := cs.queue.Consume(ctx, cs.workers, cs.processJob)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, queue.ErrClosed) {
		cs.logger.Error("Worker", "Queue consumer stopped", map[string]interface{}{"error": err.Error()})
		return err
	}

	cs.logger.Info("Worker", "Consumer stopped", nil)
	return nil
}

// processJob returns an error only for infrastructure failures, which makes the backend
// redeliver the job. Enrichment problems are already recorded on the note by the dispatcher.
func (cs *consumerService) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()
	cs.logger.Debug("Worker", "Processing job", map[string]interface{}{
		"job_id":  job.Id,
		"note_id": job.NoteId,
		"attempt": job.Attempt,
	})

	err := cs.dispatcher.Process(ctx, job.NoteId)
	if err != nil {
		level := cs.logger.Warn
		if apperror.IsInfrastructure(err) {
			level = cs.logger.Error
		}
		level("Worker", "Job failed", map[string]interface{}{
			"job_id":  job.Id,
			"note_id": job.NoteId,
			"attempt": job.Attempt,
			"error":   err.Error(),
		})
		return err
	}

	cs.logger.Info("Worker", "Job done", map[string]interface{}{
		"job_id":      job.Id,
		"note_id":     job.NoteId,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
