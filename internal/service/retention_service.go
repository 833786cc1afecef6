package service

import (
	"context"
	"time"

	"knowledge-hub-be/internal/dto"
	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/repository/specification"
	"knowledge-hub-be/internal/repository/unitofwork"
	"knowledge-hub-be/pkg/events"
)

type RetentionOptions struct {
	Days          int
	SweepInterval time.Duration // 0 disables the periodic sweep
	StaleAfter    time.Duration // 0 disables re-dispatch of stuck notes
}

// IRetentionService purges expired recycle-bin entries and re-dispatches notes that got
// stuck in pending or processing, e.g. after a worker crash.
type IRetentionService interface {
	Sweep(ctx context.Context) (*dto.SweepResult, error)
	// Run sweeps once per SweepInterval until ctx is cancelled.
	Run(ctx context.Context)
}

type retentionService struct {
	uowFactory unitofwork.RepositoryFactory
	executor   Executor
	events     events.Publisher
	logger     logger.ILogger
	opts       RetentionOptions
	now        func() time.Time
}

// NewRetentionService builds the janitor. publisher may be nil.
func NewRetentionService(
	uowFactory unitofwork.RepositoryFactory,
	executor Executor,
	publisher events.Publisher,
	log logger.ILogger,
	opts RetentionOptions,
) IRetentionService {
	return &retentionService{
		uowFactory: uowFactory,
		executor:   executor,
		events:     publisher,
		logger:     log,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *retentionService) Sweep(ctx context.Context) (*dto.SweepResult, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).NoteRepository()

	purged, err := repo.PurgeExpired(ctx, s.opts.Days)
	if err != nil {
		return nil, err
	}
	if purged > 0 && s.events != nil {
		if err := s.events.Publish(context.WithoutCancel(ctx), events.NotesChanged(events.TypeNotesPurged, nil, purged)); err != nil {
			s.logger.Warn("Retention", "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	res := &dto.SweepResult{Purged: purged, RetentionDays: s.opts.Days}
	if s.opts.StaleAfter > 0 {
		stale, err := repo.FindAll(ctx,
			specification.Active{},
			specification.ByStatuses{Statuses: []entity.NoteStatus{entity.NoteStatusPending, entity.NoteStatusProcessing}},
			specification.UpdatedBefore{Cutoff: s.now().Add(-s.opts.StaleAfter)},
			specification.OrderBy{Field: "id"},
		)
		if err != nil {
			return nil, err
		}
		for _, note := range stale {
			if err := s.executor.Submit(ctx, note.Id); err != nil {
				// the rest would most likely fail the same way
				s.logger.Warn("Retention", "Failed to re-dispatch stale note", map[string]interface{}{
					"note_id": note.Id, "error": err.Error(),
				})
				break
			}
			res.Redispatched++
		}
	}

	s.logger.Info("Retention", "Sweep finished", map[string]interface{}{
		"purged":         res.Purged,
		"redispatched":   res.Redispatched,
		"retention_days": s.opts.Days,
	})
	return res, nil
}

func (s *retentionService) Run(ctx context.Context) {
	if s.opts.SweepInterval <= 0 {
		s.logger.Info("Retention", "Periodic sweep disabled", nil)
		return
	}

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Retention", "Sweep failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
