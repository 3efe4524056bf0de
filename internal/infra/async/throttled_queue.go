package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("queue closed")

const (
	DefaultTaskSpacing = 250 * time.Millisecond
	DefaultTaskTimeout = 15 * time.Second
	MinTaskTimeout     = 10 * time.Second
	MaxTaskTimeout     = 30 * time.Second
)

type queuedTask struct {
	run    func(ctx context.Context) error
	result chan error
}

// ThrottledQueue runs submitted tasks one at a time, starting each no sooner
// than spacing after the previous one started. Tasks get their own timeout
// and never inherit the submitter's context, so a caller that goes away
// does not abort a write halfway through a batch.
type ThrottledQueue struct {
	spacing time.Duration
	timeout time.Duration

	mu      sync.Mutex
	pending []queuedTask
	closed  bool
	wake    chan struct{}
	stop    chan struct{}
	once    sync.Once
}

var _ Worker = (*ThrottledQueue)(nil)

// NewThrottledQueue clamps timeout to [MinTaskTimeout, MaxTaskTimeout].
func NewThrottledQueue(spacing, timeout time.Duration) *ThrottledQueue {
	if spacing < 0 {
		spacing = 0
	}
	switch {
	case timeout <= 0:
		timeout = DefaultTaskTimeout
	case timeout < MinTaskTimeout:
		timeout = MinTaskTimeout
	case timeout > MaxTaskTimeout:
		timeout = MaxTaskTimeout
	}

	return &ThrottledQueue{
		spacing: spacing,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (q *ThrottledQueue) Spacing() time.Duration { return q.spacing }
func (q *ThrottledQueue) Timeout() time.Duration { return q.timeout }

// Submit enqueues a task. The returned channel receives its result and is
// closed afterwards.
func (q *ThrottledQueue) Submit(task func(ctx context.Context) error) <-chan error {
	result := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		result <- ErrQueueClosed
		close(result)
		return result
	}
	q.pending = append(q.pending, queuedTask{run: task, result: result})

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return result
}

// Run processes tasks until ctx is cancelled or Shutdown is called. Tasks
// already queued at that point still run.
func (q *ThrottledQueue) Run(ctx context.Context, done func()) {
	slog.Debug("throttled queue started",
		slog.Duration("spacing", q.spacing),
		slog.Duration("timeout", q.timeout))
	defer done()

	var lastStart time.Time
	for {
		task, ok := q.next()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-ctx.Done():
			case <-q.stop:
			}
			q.close()
			q.drain(&lastStart)
			slog.Info("throttled queue stopped")
			return
		}
		q.execute(task, &lastStart)
	}
}

func (q *ThrottledQueue) Shutdown() {
	q.once.Do(func() {
		close(q.stop)
	})
}

func (q *ThrottledQueue) next() (queuedTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return queuedTask{}, false
	}
	task := q.pending[0]
	q.pending = q.pending[1:]
	return task, true
}

func (q *ThrottledQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *ThrottledQueue) drain(lastStart *time.Time) {
	for {
		task, ok := q.next()
		if !ok {
			return
		}
		q.execute(task, lastStart)
	}
}

func (q *ThrottledQueue) execute(task queuedTask, lastStart *time.Time) {
	if !lastStart.IsZero() {
		if wait := q.spacing - time.Since(*lastStart); wait > 0 {
			time.Sleep(wait)
		}
	}
	*lastStart = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	task.result <- task.run(ctx)
	close(task.result)
}
