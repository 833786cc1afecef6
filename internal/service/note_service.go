package service

import (
	"context"
	"strings"

	"knowledge-hub-be/internal/dto"
	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/repository/specification"
	"knowledge-hub-be/internal/repository/unitofwork"
	"knowledge-hub-be/internal/search"
	"knowledge-hub-be/pkg/events"
)

type INoteService interface {
	Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, id uint) (*dto.NoteResponse, error)
	// List returns the active notes newest first, or the topK most similar ones when a
	// query is given.
	List(ctx context.Context, req *dto.ListNotesRequest) ([]*dto.NoteResponse, error)
	Delete(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error)
	Reprocess(ctx context.Context, id uint) error

	ListDeleted(ctx context.Context) ([]*dto.NoteResponse, error)
	Restore(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error)
	HardDelete(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error)
	EmptyBin(ctx context.Context) (*dto.BulkResult, error)

	SystemStatus(ctx context.Context) (*dto.SystemStatusResponse, error)
}

type NoteServiceOptions struct {
	DefaultTopK   int
	RetentionDays int
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	executor   Executor
	enrichment IEnrichmentService
	ranker     search.Ranker
	events     events.Publisher
	logger     logger.ILogger
	opts       NoteServiceOptions
}

// NewNoteService wires the request-facing operations. publisher may be nil.
func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	executor Executor,
	enrichment IEnrichmentService,
	ranker search.Ranker,
	publisher events.Publisher,
	log logger.ILogger,
	opts NoteServiceOptions,
) INoteService {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = search.DefaultTopK
	}
	return &noteService{
		uowFactory: uowFactory,
		executor:   executor,
		enrichment: enrichment,
		ranker:     ranker,
		events:     publisher,
		logger:     log,
		opts:       opts,
	}
}

// Create commits the note before it is handed to the executor, so a worker never sees an
// id that is not in the store yet. If the queue rejects the job the note stays pending and
// the error is returned; the retention janitor picks it up later.
func (s *noteService) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).NoteRepository()

	note, err := repo.Create(ctx, req.Content)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NoteCreated(note.Id, s.executor.Mode()))

	if err := s.executor.Submit(ctx, note.Id); err != nil {
		s.logger.Error("NoteService", "Failed to dispatch note", map[string]interface{}{
			"note_id": note.Id,
			"mode":    s.executor.Mode(),
			"error":   err.Error(),
		})
		return nil, err
	}

	status := note.Status
	if current, err := repo.GetById(ctx, note.Id); err == nil && current != nil {
		status = current.Status
	}

	s.logger.Info("NoteService", "Note created", map[string]interface{}{
		"note_id": note.Id,
		"mode":    s.executor.Mode(),
		"status":  status,
	})

	return &dto.CreateNoteResponse{
		Id:           note.Id,
		Status:       string(status),
		DispatchMode: s.executor.Mode(),
	}, nil
}

func (s *noteService) Show(ctx context.Context, id uint) (*dto.NoteResponse, error) {
	note, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.ErrNotFound
	}
	return toNoteResponse(note, nil), nil
}

func (s *noteService) List(ctx context.Context, req *dto.ListNotesRequest) ([]*dto.NoteResponse, error) {
	notes, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if req == nil || strings.TrimSpace(req.Query) == "" {
		return toNoteResponses(notes), nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.opts.DefaultTopK
	}

	scored := s.ranker.SearchScored(ctx, req.Query, notes, topK)
	res := make([]*dto.NoteResponse, len(scored))
	for i, sn := range scored {
		score := sn.Score
		res[i] = toNoteResponse(sn.Note, &score)
	}
	return res, nil
}

func (s *noteService) Delete(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error) {
	affected, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().SoftDelete(ctx, req.Ids)
	if err != nil {
		return nil, err
	}
	s.bulkDone(ctx, events.TypeNotesDeleted, req.Ids, affected)
	return &dto.BulkResult{Affected: affected}, nil
}

// Reprocess submits an existing note again. Completed notes are re-enriched; failed notes
// are left as they are by the dispatcher.
func (s *noteService) Reprocess(ctx context.Context, id uint) error {
	note, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().GetById(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return apperror.ErrNotFound
	}
	return s.executor.Submit(ctx, id)
}

func (s *noteService) ListDeleted(ctx context.Context) ([]*dto.NoteResponse, error) {
	notes, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	return toNoteResponses(notes), nil
}

func (s *noteService) Restore(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error) {
	affected, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().Restore(ctx, req.Ids)
	if err != nil {
		return nil, err
	}
	s.bulkDone(ctx, events.TypeNotesRestored, req.Ids, affected)
	return &dto.BulkResult{Affected: affected}, nil
}

func (s *noteService) HardDelete(ctx context.Context, req *dto.IdsRequest) (*dto.BulkResult, error) {
	affected, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().HardDelete(ctx, req.Ids)
	if err != nil {
		return nil, err
	}
	s.bulkDone(ctx, events.TypeNotesPurged, req.Ids, affected)
	return &dto.BulkResult{Affected: affected}, nil
}

func (s *noteService) EmptyBin(ctx context.Context) (*dto.BulkResult, error) {
	affected, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().EmptyBin(ctx)
	if err != nil {
		return nil, err
	}
	s.bulkDone(ctx, events.TypeNotesPurged, nil, affected)
	return &dto.BulkResult{Affected: affected}, nil
}

func (s *noteService) SystemStatus(ctx context.Context) (*dto.SystemStatusResponse, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).NoteRepository()

	byStatus := make(map[string]int, 4)
	for _, st := range []entity.NoteStatus{
		entity.NoteStatusPending,
		entity.NoteStatusProcessing,
		entity.NoteStatusCompleted,
		entity.NoteStatusFailed,
	} {
		count, err := repo.Count(ctx, specification.Active{}, specification.ByStatuses{Statuses: []entity.NoteStatus{st}})
		if err != nil {
			return nil, err
		}
		byStatus[string(st)] = int(count)
	}

	deleted, err := repo.Count(ctx, specification.InBin{})
	if err != nil {
		return nil, err
	}

	return &dto.SystemStatusResponse{
		Provider:          s.enrichment.ProviderName(),
		SupportsEmbedding: s.enrichment.SupportsEmbedding(),
		Dimensions:        s.enrichment.Dimensions(),
		DispatchMode:      s.executor.Mode(),
		RetentionDays:     s.opts.RetentionDays,
		NotesByStatus:     byStatus,
		DeletedNotes:      int(deleted),
	}, nil
}

func (s *noteService) bulkDone(ctx context.Context, eventType string, ids []uint, affected int64) {
	s.logger.Info("NoteService", "Bulk operation applied", map[string]interface{}{
		"event":    eventType,
		"ids":      ids,
		"affected": affected,
	})
	if affected > 0 {
		s.publish(ctx, events.NotesChanged(eventType, ids, affected))
	}
}

func (s *noteService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("NoteService", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(), "error": err.Error(),
		})
	}
}

func toNoteResponse(n *entity.Note, score *float64) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:             n.Id,
		Content:        n.Content,
		Category:       n.CategoryOrDefault(),
		Tags:           n.Tags,
		Status:         string(n.Status),
		HasEmbedding:   n.HasEmbedding(),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		IsDeleted:      n.IsDeleted,
		DeletedAt:      n.DeletedAt,
		RelevanceScore: score,
	}
}

func toNoteResponses(notes []*entity.Note) []*dto.NoteResponse {
	res := make([]*dto.NoteResponse, len(notes))
	for i, n := range notes {
		res[i] = toNoteResponse(n, nil)
	}
	return res
}
