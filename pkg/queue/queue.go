// Package queue carries enrichment jobs from the request path to the workers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxAttempts bounds redelivery of a job whose handler keeps failing.
const MaxAttempts = 5

// Backend names accepted by QUEUE_BACKEND.
const (
	BackendNATS   = "nats"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

var ErrClosed = errors.New("queue closed")

type Job struct {
	Id         string    `json:"id"`
	NoteId     uint      `json:"note_id"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewJob(noteId uint) Job {
	return Job{
		Id:         uuid.NewString(),
		NoteId:     noteId,
		Attempt:    1,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Retry returns the job for its next delivery, or false once MaxAttempts is spent.
func (j Job) Retry() (Job, bool) {
	if j.Attempt >= MaxAttempts {
		return j, false
	}
	j.Attempt++
	return j, true
}

func (j Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

func UnmarshalJob(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, err
	}
	if j.NoteId == 0 {
		return Job{}, errors.New("job without note id")
	}
	return j, nil
}

// Handler processes one job. A returned error asks the backend to redeliver.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Backend() string
	// Ping reports whether the backend is reachable right now.
	Ping(ctx context.Context) error
	Enqueue(ctx context.Context, job Job) error
	// Consume runs handler on up to workers jobs at a time and blocks until ctx ends.
	Consume(ctx context.Context, workers int, handler Handler) error
	Close() error
}

// RetryDelay is the pause before the given delivery attempt is retried.
func RetryDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * 500 * time.Millisecond
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
