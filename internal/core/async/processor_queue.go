package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/contracts-parser/internal/async"
	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
)

// Handler processes one document. *core.Processor satisfies it.
type Handler interface {
	Process(ctx context.Context, doc entity.Document) entity.Outcome
}

// Completion is one job's result. Err is set only when the job could not be
// resolved to an outcome at all (cancelled before it started, or the handler
// panicked); Outcome is then meaningless.
type Completion struct {
	Job     async.Job
	Outcome entity.Outcome
	Err     error
}

var _ async.Queue = (*ProcessorQueue)(nil)

type envelope struct {
	ctx context.Context
	job async.Job
}

// ProcessorQueue is a fixed-width worker pool. Completions are delivered on
// Results in completion order; Results closes after Shutdown once every
// accepted job has completed.
type ProcessorQueue struct {
	proc    Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan envelope
	results chan Completion
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithQueueSize sizes both the job buffer and the completion buffer.
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan envelope, n)
			q.results = make(chan Completion, n)
		}
	}
}

// WithProcessTimeout bounds each job; zero leaves only the caller's deadline.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d >= 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 8,
		timeout: 3 * time.Minute,
		ch:      make(chan envelope, 256),
		results: make(chan Completion, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

// Results is the fan-in channel.
func (q *ProcessorQueue) Results() <-chan Completion {
	return q.results
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for env := range q.ch {
					q.results <- q.run(workerID, env)
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
		go func() {
			q.wg.Wait()
			close(q.results)
		}()
	})
}

func (q *ProcessorQueue) run(workerID int, env envelope) (c Completion) {
	c.Job = env.job
	name := env.job.Doc.Name
	if err := env.ctx.Err(); err != nil {
		q.logger.Warn("queue.job.cancelled", "worker_id", workerID, "filename", name, "error", err)
		c.Err = fmt.Errorf("%w: %s: %w", common.ErrTaskFailed, name, err)
		return c
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queue.job.panic", "worker_id", workerID, "filename", name, "panic", r)
			c.Err = fmt.Errorf("%w: %s: panic: %v", common.ErrTaskFailed, name, r)
		}
	}()

	ctx, cancel := common.WithTimeout(env.ctx, q.timeout)
	defer cancel()
	ctx = common.WithFilename(ctx, name)
	if env.job.RunID != "" {
		ctx = common.WithRunID(ctx, env.job.RunID)
	}

	start := time.Now()
	c.Outcome = q.proc.Process(ctx, env.job.Doc)
	q.logger.Debug("queue.job.done",
		"worker_id", workerID,
		"filename", name,
		"ok", c.Outcome.OK(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return c
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "filename", job.Doc.Name)
		return common.ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	env := envelope{ctx: ctx, job: job}
	select {
	case q.ch <- env:
		return nil
	default:
	}
	q.logger.Warn("queue.enqueue.backpressure", "filename", job.Doc.Name)
	select {
	case q.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for the workers to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Debug("queue.shutdown.drained")
	}
}
