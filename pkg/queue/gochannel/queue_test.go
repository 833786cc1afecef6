package gochannel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/queue"
)

func TestQueue_EnqueueThenConsume(t *testing.T) {
	q, err := New("test", logger.NewNopLogger())
	require.NoError(t, err)
	defer q.Close()
	require.NoError(t, q.Ping(context.Background()))

	// published before any consumer runs
	require.NoError(t, q.Enqueue(context.Background(), queue.NewJob(1)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []uint
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, 2, func(ctx context.Context, job queue.Job) error {
			mu.Lock()
			got = append(got, job.NoteId)
			mu.Unlock()
			return nil
		})
		close(done)
	}()

	require.NoError(t, q.Enqueue(context.Background(), queue.NewJob(2)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.ElementsMatch(t, []uint{1, 2}, got)
}

func TestQueue_RetriesFailedJobs(t *testing.T) {
	q, err := New("retry", logger.NewNopLogger())
	require.NoError(t, err)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := []int{}
	go func() {
		_ = q.Consume(ctx, 1, func(ctx context.Context, job queue.Job) error {
			mu.Lock()
			defer mu.Unlock()
			attempts = append(attempts, job.Attempt)
			if job.Attempt < 2 {
				return errors.New("database unavailable")
			}
			return nil
		})
	}()

	require.NoError(t, q.Enqueue(context.Background(), queue.NewJob(9)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(attempts) == 2
	}, 3*time.Second, 20*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []int{1, 2}, attempts)
	mu.Unlock()
}

func TestQueue_PingAfterClose(t *testing.T) {
	q, err := New("closed", logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Ping(context.Background()), queue.ErrClosed)
	assert.NoError(t, q.Close())
}
