package bootstrap

import (
	"context"
	"fmt"
	"time"

	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/controller"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/repository/unitofwork"
	"knowledge-hub-be/internal/search"
	"knowledge-hub-be/internal/service"
	aifactory "knowledge-hub-be/pkg/ai/factory"
	"knowledge-hub-be/pkg/events"
	pktNats "knowledge-hub-be/pkg/nats"
	"knowledge-hub-be/pkg/queue"
	"knowledge-hub-be/pkg/queue/gochannel"
	redisqueue "knowledge-hub-be/pkg/queue/redis"

	"gorm.io/gorm"
)

const defaultPingTimeout = 3 * time.Second

type Container struct {
	// Controllers
	NoteController       controller.INoteController
	RecycleBinController controller.IRecycleBinController
	SystemController     controller.ISystemController

	NoteService      service.INoteService
	RetentionService service.IRetentionService
	Dispatcher       service.IDispatcher
	Executor         service.Executor

	// ConsumerService is nil when notes are enriched inline.
	ConsumerService service.IConsumerService
	// QueueBackend is the backend actually in use, BackendNone for inline mode.
	QueueBackend string

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every component. The dispatch mode is decided here, once: the
// configured queue is used only if it answers a ping, otherwise notes are enriched inline.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. AI provider
	provider, err := aifactory.NewProvider(cfg.Ai, sysLogger)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "AI provider ready", map[string]interface{}{
		"provider":           provider.Name(),
		"supports_embedding": provider.SupportsEmbedding(),
		"dimensions":         provider.Dimensions(),
	})

	// 3. Event bus (optional)
	var publisher events.Publisher
	if cfg.Queue.PublishEvents && cfg.Queue.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.Queue.NatsURL, cfg.Queue.PingTimeout)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS event publisher unavailable, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Services
	enrichmentService := service.NewEnrichmentService(provider, cfg.Ai.RequestsPerSecond, sysLogger)
	ranker := search.NewLinearRanker(enrichmentService, cfg.Search.QueryCacheTTL)
	dispatcher := service.NewDispatcher(uowFactory, enrichmentService, publisher, sysLogger)

	var executor service.Executor = service.NewInlineExecutor(dispatcher)
	c.QueueBackend = queue.BackendNone
	if q := openQueue(ctx, cfg.Queue, sysLogger); q != nil {
		executor = service.NewQueuedExecutor(q)
		c.QueueBackend = q.Backend()
		c.ConsumerService = service.NewConsumerService(q, cfg.Queue.Workers, dispatcher, sysLogger)
		c.closers = append(c.closers, func() { q.Close() })
	}
	sysLogger.Info("Bootstrap", "Dispatch mode selected", map[string]interface{}{"mode": executor.Mode()})

	noteService := service.NewNoteService(
		uowFactory,
		executor,
		enrichmentService,
		ranker,
		publisher,
		sysLogger,
		service.NoteServiceOptions{
			DefaultTopK:   cfg.Search.TopK,
			RetentionDays: cfg.Retention.Days,
		},
	)
	retentionService := service.NewRetentionService(
		uowFactory,
		executor,
		publisher,
		sysLogger,
		service.RetentionOptions{
			Days:          cfg.Retention.Days,
			SweepInterval: cfg.Retention.SweepInterval,
			StaleAfter:    cfg.Retention.StaleAfter,
		},
	)

	c.NoteService = noteService
	c.RetentionService = retentionService
	c.Dispatcher = dispatcher
	c.Executor = executor

	// 5. Controllers
	c.NoteController = controller.NewNoteController(noteService)
	c.RecycleBinController = controller.NewRecycleBinController(noteService, retentionService)
	c.SystemController = controller.NewSystemController(noteService, sysLogger)

	return c, nil
}

// RunsEmbeddedWorkers reports whether this process has to consume its own queue. The
// in-memory queue cannot be shared, so it always does.
func (c *Container) RunsEmbeddedWorkers(cfg config.QueueConfig) bool {
	if c.ConsumerService == nil {
		return false
	}
	return c.QueueBackend == queue.BackendMemory || cfg.EmbeddedWorkers
}

// Close releases the queue and the event bus connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// openQueue returns nil when the configured backend is disabled or unreachable.
func openQueue(ctx context.Context, cfg config.QueueConfig, log logger.ILogger) queue.Queue {
	var (
		q   queue.Queue
		err error
	)

	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	switch cfg.Backend {
	case queue.BackendNone, "":
		return nil
	case queue.BackendMemory:
		q, err = gochannel.New(cfg.Name, log)
	case queue.BackendNATS:
		q, err = pktNats.NewJobQueue(pingCtx, cfg.NatsURL, cfg.Name, cfg.PingTimeout, log)
	case queue.BackendRedis:
		q, err = redisqueue.New(pingCtx, cfg.RedisURL, cfg.Name, log)
	default:
		log.Warn("Bootstrap", "Unknown queue backend, enriching inline", map[string]interface{}{"backend": cfg.Backend})
		return nil
	}
	if err != nil {
		log.Warn("Bootstrap", "Queue backend unavailable, enriching inline", map[string]interface{}{
			"backend": cfg.Backend, "error": err.Error(),
		})
		return nil
	}

	if err := q.Ping(pingCtx); err != nil {
		log.Warn("Bootstrap", "Queue backend did not answer ping, enriching inline", map[string]interface{}{
			"backend": cfg.Backend, "error": err.Error(),
		})
		q.Close()
		return nil
	}
	return q
}
