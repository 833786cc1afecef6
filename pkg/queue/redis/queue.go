// Package redis is the durable list-backed queue backend. Each consumer moves jobs into its
// own processing list with BLMOVE and removes them once handled.
package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/queue"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const blockTimeout = 2 * time.Second

type Queue struct {
	client *goredis.Client
	key    string
	logger logger.ILogger
}

var _ queue.Queue = (*Queue)(nil)

// New parses url (falling back to a bare host:port) and pings the server.
func New(ctx context.Context, url, name string, log logger.ILogger) (*Queue, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		opt = &goredis.Options{Addr: url}
	}
	client := goredis.NewClient(opt)

	q := &Queue{client: client, key: "knowledge-hub:queue:" + name, logger: log}
	if err := q.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Queue) Backend() string {
	return queue.BackendRedis
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) Enqueue(ctx context.Context, job queue.Job) error {
	payload, err := job.Marshal()
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *Queue) deadKey() string {
	return q.key + ":dead"
}

// Consume starts workers that each own a processing list. On shutdown, jobs still sitting
// in a processing list are moved back to the main list.
func (q *Queue) Consume(ctx context.Context, workers int, handler queue.Handler) error {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		processing := q.key + ":processing:" + uuid.NewString()
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx, processing, handler)
			q.restore(processing)
		}()
	}
	wg.Wait()
	return nil
}

func (q *Queue) work(ctx context.Context, processing string, handler queue.Handler) {
	for ctx.Err() == nil {
		payload, err := q.client.BLMove(ctx, q.key, processing, "RIGHT", "LEFT", blockTimeout).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.Warn("Queue", "Redis receive failed", map[string]interface{}{"error": err.Error()})
			sleep(ctx, time.Second)
			continue
		}

		q.handle(ctx, processing, payload, handler)
	}
}

func (q *Queue) handle(ctx context.Context, processing, payload string, handler queue.Handler) {
	job, err := queue.UnmarshalJob([]byte(payload))
	if err != nil {
		q.logger.Error("Queue", "Moving malformed job to dead letter list", map[string]interface{}{"error": err.Error()})
		q.settle(processing, payload, q.deadKey(), payload)
		return
	}

	herr := handler(ctx, job)
	if herr == nil {
		q.settle(processing, payload, "", "")
		return
	}

	next, ok := job.Retry()
	if !ok {
		q.logger.Error("Queue", "Job failed permanently", map[string]interface{}{
			"note_id": job.NoteId, "job_id": job.Id, "error": herr.Error(),
		})
		q.settle(processing, payload, q.deadKey(), payload)
		return
	}

	sleep(ctx, queue.RetryDelay(job.Attempt))
	nextPayload, err := next.Marshal()
	if err != nil {
		return
	}
	q.settle(processing, payload, q.key, string(nextPayload))
}

// settle removes payload from the processing list and, when target is set, pushes
// replacement onto target in the same transaction.
func (q *Queue) settle(processing, payload, target, replacement string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := q.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LRem(ctx, processing, 1, payload)
		if target != "" {
			pipe.LPush(ctx, target, replacement)
		}
		return nil
	})
	if err != nil {
		q.logger.Error("Queue", "Failed to settle job", map[string]interface{}{"error": err.Error()})
	}
}

func (q *Queue) restore(processing string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		err := q.client.LMove(ctx, processing, q.key, "RIGHT", "RIGHT").Err()
		if err != nil {
			return
		}
	}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
