package service

import (
	"context"
	"errors"
	"fmt"

	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/repository/contract"
	"knowledge-hub-be/internal/repository/unitofwork"
	"knowledge-hub-be/pkg/events"
	"knowledge-hub-be/pkg/queue"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "knowledge-hub-be/service"

const (
	DispatchModeInline = "inline"
	DispatchModeQueued = "queued"
)

// IDispatcher owns the note status state machine.
type IDispatcher interface {
	// Process enriches one note. It is safe to run more than once for the same id: an unknown
	// id is a no-op, a completed note is enriched again and overwritten, and a failed note is
	// left alone. Only infrastructure errors are returned.
	Process(ctx context.Context, noteId uint) error
}

// Executor decides when Process runs for a freshly created note.
type Executor interface {
	Submit(ctx context.Context, noteId uint) error
	Mode() string
}

type dispatcher struct {
	uowFactory unitofwork.RepositoryFactory
	enrichment IEnrichmentService
	events     events.Publisher
	logger     logger.ILogger
}

// NewDispatcher builds the dispatcher. publisher may be nil.
func NewDispatcher(
	uowFactory unitofwork.RepositoryFactory,
	enrichment IEnrichmentService,
	publisher events.Publisher,
	log logger.ILogger,
) IDispatcher {
	return &dispatcher{
		uowFactory: uowFactory,
		enrichment: enrichment,
		events:     publisher,
		logger:     log,
	}
}

func (d *dispatcher) Process(ctx context.Context, noteId uint) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dispatcher.Process",
		trace.WithAttributes(attribute.Int64("note.id", int64(noteId))))
	defer span.End()

	err := d.process(ctx, noteId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (d *dispatcher) process(ctx context.Context, noteId uint) error {
	repo := d.uowFactory.NewUnitOfWork(ctx).NoteRepository()

	note, err := repo.GetById(ctx, noteId)
	if err != nil {
		return err
	}
	if note == nil {
		d.logger.Warn("Dispatcher", "Note not found, skipping", map[string]interface{}{"note_id": noteId})
		return nil
	}

	switch note.Status {
	case entity.NoteStatusFailed:
		d.logger.Info("Dispatcher", "Note already failed, skipping", map[string]interface{}{"note_id": noteId})
		return nil
	case entity.NoteStatusPending, entity.NoteStatusProcessing:
		claimed, err := repo.SetStatus(ctx, noteId, entity.NoteStatusProcessing)
		if errors.Is(err, apperror.ErrIllegalTransition) {
			// another worker finished or failed it in the meantime
			d.logger.Info("Dispatcher", "Note moved on before claim", map[string]interface{}{
				"note_id": noteId, "error": err.Error(),
			})
			return nil
		}
		if err != nil {
			return err
		}
		if claimed == nil {
			return nil
		}
	}
	wasCompleted := note.Status == entity.NoteStatusCompleted

	enrichment, err := d.enrichment.Enrich(ctx, note.Content)
	if err != nil {
		if wasCompleted {
			// keep the previous enrichment rather than downgrading a completed note
			return err
		}
		return d.fail(context.WithoutCancel(ctx), noteId, enrichment, err)
	}

	applied, err := d.complete(ctx, noteId, enrichment)
	if err != nil || !applied {
		return err
	}

	d.logger.Info("Dispatcher", "Note enriched", map[string]interface{}{
		"note_id":            noteId,
		"category":           enrichment.Category,
		"fallback_category":  enrichment.FallbackCategory,
		"fallback_embedding": enrichment.FallbackEmbedding,
	})
	d.publish(ctx, events.NoteEnriched(noteId, enrichment.Category, enrichment.Tags, enrichment.FallbackCategory))
	return nil
}

// complete writes the enrichment and the completed status in one transaction so no reader
// sees an embedding on a note that is not completed. It reports false when the note was
// removed or moved on while the provider was working.
func (d *dispatcher) complete(ctx context.Context, noteId uint, e *entity.Enrichment) (bool, error) {
	applied := false
	err := d.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(repo contract.NoteRepository) error {
		category := e.Category
		updated, err := repo.ApplyEnrichment(ctx, noteId, &category, e.Tags, e.Embedding)
		if err != nil {
			return err
		}
		if updated == nil {
			d.logger.Warn("Dispatcher", "Note deleted during enrichment", map[string]interface{}{"note_id": noteId})
			return nil
		}

		if _, err := repo.SetStatus(ctx, noteId, entity.NoteStatusCompleted); err != nil {
			return err
		}
		applied = true
		return nil
	})

	if errors.Is(err, apperror.ErrIllegalTransition) {
		d.logger.Warn("Dispatcher", "Discarding enrichment, note changed status", map[string]interface{}{
			"note_id": noteId, "error": err.Error(),
		})
		return false, nil
	}
	if err != nil {
		return false, apperror.Infrastructure("commit enrichment", err)
	}
	return applied, nil
}

// fail keeps whatever classification was produced, clears the embedding and marks the
// note failed.
func (d *dispatcher) fail(ctx context.Context, noteId uint, partial *entity.Enrichment, cause error) error {
	d.logger.Error("Dispatcher", "Enrichment failed", map[string]interface{}{
		"note_id": noteId, "error": cause.Error(),
	})

	err := d.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(repo contract.NoteRepository) error {
		if partial != nil && partial.Category != "" {
			category := partial.Category
			if _, err := repo.ApplyEnrichment(ctx, noteId, &category, partial.Tags, nil); err != nil {
				return err
			}
		}
		_, err := repo.SetStatus(ctx, noteId, entity.NoteStatusFailed)
		return err
	})
	if errors.Is(err, apperror.ErrIllegalTransition) {
		// another worker already settled the note
		d.logger.Warn("Dispatcher", "Discarding failure, note changed status", map[string]interface{}{
			"note_id": noteId, "error": err.Error(),
		})
		return nil
	}
	if err != nil {
		return apperror.Infrastructure("commit failure", err)
	}

	d.publish(ctx, events.NoteFailed(noteId, cause.Error()))
	return nil
}

func (d *dispatcher) publish(ctx context.Context, event events.Event) {
	if d.events == nil {
		return
	}
	if err := d.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		d.logger.Warn("Dispatcher", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(), "error": err.Error(),
		})
	}
}

// InlineExecutor runs Process on the caller's goroutine.
type InlineExecutor struct {
	dispatcher IDispatcher
}

func NewInlineExecutor(dispatcher IDispatcher) *InlineExecutor {
	return &InlineExecutor{dispatcher: dispatcher}
}

func (e *InlineExecutor) Submit(ctx context.Context, noteId uint) error {
	return e.dispatcher.Process(ctx, noteId)
}

func (e *InlineExecutor) Mode() string {
	return DispatchModeInline
}

// QueuedExecutor hands the note id to a queue for a worker to pick up.
type QueuedExecutor struct {
	queue queue.Queue
}

func NewQueuedExecutor(q queue.Queue) *QueuedExecutor {
	return &QueuedExecutor{queue: q}
}

func (e *QueuedExecutor) Submit(ctx context.Context, noteId uint) error {
	if err := e.queue.Enqueue(ctx, queue.NewJob(noteId)); err != nil {
		return apperror.Infrastructure(fmt.Sprintf("enqueue note %d on %s", noteId, e.queue.Backend()),
			fmt.Errorf("%w: %v", apperror.ErrQueueUnavailable, err))
	}
	return nil
}

func (e *QueuedExecutor) Mode() string {
	return DispatchModeQueued + ":" + e.queue.Backend()
}
