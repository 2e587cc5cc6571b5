// Package jobs provides a small in-memory worker queue for background
// tasks such as report rendering. Jobs are lost on restart; callers that
// need durability should treat a missing job as "submit again".
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job identifies one unit of background work. The queue carries no
// payload; handlers look the work up by ID in their own stores.
type Job struct {
	ID         string
	Kind       string
	EnqueuedAt time.Time
}

// Handler executes a job. A non-nil error triggers a retry until the
// attempt budget is spent.
type Handler func(ctx context.Context, job Job) error

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers     int
	Buffer      int
	MaxAttempts int
	Backoff     time.Duration
	Logger      *zap.Logger
}

// Queue fans queued jobs out to a fixed pool of worker goroutines.
// Retries happen inside the worker that picked the job up, so a failing
// job never starves the channel for fresh work longer than its backoff.
type Queue struct {
	name        string
	handler     Handler
	workers     int
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewQueue builds a stopped queue; call Start before Enqueue.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = cfg.Workers * 8
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:        name,
		handler:     handler,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		logger:      cfg.Logger,
		jobs:        make(chan Job, cfg.Buffer),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Sugar().Infow("job queue started", "queue", q.name, "workers", q.workers)
}

// Stop drains nothing: in-flight jobs finish their current attempt, queued
// jobs are discarded.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("job queue stopped", "queue", q.name)
}

// Enqueue submits a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("jobs: queue %q is not running", q.name)
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs: queue %q is shutting down", q.name)
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

// run retries the job in place with a fixed backoff between attempts.
func (q *Queue) run(job Job) {
	log := q.logger.Sugar().With("queue", q.name, "job_id", job.ID, "kind", job.Kind)
	for attempt := 1; ; attempt++ {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		if attempt >= q.maxAttempts {
			log.Errorw("job abandoned after final attempt", "attempts", attempt, "error", err)
			return
		}
		log.Warnw("job attempt failed", "attempt", attempt, "error", err)

		timer := time.NewTimer(q.backoff)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
