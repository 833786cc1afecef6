// Package gochannel is the in-process queue backend built on watermill's Go channel pub/sub.
// Jobs live only as long as the process; the stale-note sweep recovers anything lost.
package gochannel

import (
	"context"
	"sync"
	"time"

	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/queue"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Queue struct {
	pubSub   *gochannel.GoChannel
	topic    string
	messages <-chan *message.Message
	logger   logger.ILogger

	mu     sync.Mutex
	closed bool
}

var _ queue.Queue = (*Queue)(nil)

// New subscribes immediately so jobs enqueued before Consume starts are held, not dropped.
func New(topic string, log logger.ILogger) (*Queue, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)
	q := &Queue{pubSub: pubSub, topic: "jobs." + topic, logger: log}

	messages, err := pubSub.Subscribe(context.Background(), q.topic)
	if err != nil {
		return nil, err
	}
	q.messages = messages
	return q, nil
}

func (q *Queue) Backend() string {
	return queue.BackendMemory
}

func (q *Queue) Ping(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return queue.ErrClosed
	}
	return nil
}

func (q *Queue) Enqueue(ctx context.Context, job queue.Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}
	return q.pubSub.Publish(q.topic, message.NewMessage(job.Id, payload))
}

// Consume acks each message on receipt and hands it to a bounded pool. A failed job is
// published again after a delay until its attempts run out.
func (q *Queue) Consume(ctx context.Context, workers int, handler queue.Handler) error {
	if workers < 1 {
		workers = 1
	}

	slots := make(chan struct{}, workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-q.messages:
			if !ok {
				return nil
			}
			msg.Ack()

			job, err := queue.UnmarshalJob(msg.Payload)
			if err != nil {
				q.logger.Error("Queue", "Dropping malformed job", map[string]interface{}{"error": err.Error()})
				continue
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-slots }()
				if err := handler(ctx, job); err != nil {
					q.retry(ctx, job, err)
				}
			}()
		}
	}
}

func (q *Queue) retry(ctx context.Context, job queue.Job, cause error) {
	next, ok := job.Retry()
	if !ok {
		q.logger.Error("Queue", "Job failed permanently", map[string]interface{}{
			"note_id": job.NoteId, "job_id": job.Id, "error": cause.Error(),
		})
		return
	}

	select {
	case <-time.After(queue.RetryDelay(job.Attempt)):
	case <-ctx.Done():
		return
	}
	if err := q.Enqueue(ctx, next); err != nil {
		q.logger.Error("Queue", "Failed to requeue job", map[string]interface{}{
			"note_id": job.NoteId, "error": err.Error(),
		})
	}
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	return q.pubSub.Close()
}
