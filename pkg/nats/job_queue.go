package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/queue"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JobQueue is the JetStream queue backend. The JOBS stream uses work-queue retention so a
// job is removed once a worker acks it; redelivery is driven by Nak and MaxDeliver.
type JobQueue struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
	durable string
	logger  logger.ILogger
}

var _ queue.Queue = (*JobQueue)(nil)

func NewJobQueue(ctx context.Context, url, name string, timeout time.Duration, log logger.ILogger) (*JobQueue, error) {
	nc, err := Connect(url, "knowledge-hub-jobs", true, timeout)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      JobsStream,
		Subjects:  []string{"jobs.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", JobsStream, err)
	}

	return &JobQueue{
		nc:      nc,
		js:      js,
		subject: "jobs." + name,
		durable: name + "-workers",
		logger:  log,
	}, nil
}

func (q *JobQueue) Backend() string {
	return queue.BackendNATS
}

func (q *JobQueue) Ping(ctx context.Context) error {
	if q.nc.Status() != nats.CONNECTED {
		return errors.New("nats connection is " + q.nc.Status().String())
	}
	_, err := q.js.AccountInfo(ctx)
	return err
}

func (q *JobQueue) Enqueue(ctx context.Context, job queue.Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}
	_, err = q.js.Publish(ctx, q.subject, payload, jetstream.WithMsgID(job.Id))
	return err
}

// Consume pulls with a durable consumer shared by every worker process.
func (q *JobQueue) Consume(ctx context.Context, workers int, handler queue.Handler) error {
	if workers < 1 {
		workers = 1
	}

	consumer, err := q.js.CreateOrUpdateConsumer(ctx, JobsStream, jetstream.ConsumerConfig{
		Durable:       q.durable,
		FilterSubject: q.subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       2 * time.Minute,
		MaxDeliver:    queue.MaxAttempts,
		MaxAckPending: workers * 2,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	slots := make(chan struct{}, workers)
	var wg sync.WaitGroup

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		job, err := queue.UnmarshalJob(msg.Data())
		if err != nil {
			q.logger.Error("Queue", "Terminating malformed job", map[string]interface{}{"error": err.Error()})
			_ = msg.Term()
			return
		}
		if meta, err := msg.Metadata(); err == nil {
			job.Attempt = int(meta.NumDelivered)
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			_ = msg.Nak()
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()
			if err := handler(ctx, job); err != nil {
				q.logger.Warn("Queue", "Job failed, asking for redelivery", map[string]interface{}{
					"note_id": job.NoteId, "attempt": job.Attempt, "error": err.Error(),
				})
				_ = msg.NakWithDelay(queue.RetryDelay(job.Attempt))
				return
			}
			_ = msg.Ack()
		}()
	}, jetstream.PullMaxMessages(workers))
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	<-ctx.Done()
	consumeCtx.Stop()
	wg.Wait()
	return nil
}

func (q *JobQueue) Close() error {
	if q.nc != nil {
		q.nc.Close()
	}
	return nil
}
