package tree

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/drive/pkg/job"
	"github.com/dmitrymomot/drive/pkg/logger"
)

// Dispatcher hands an accepted deletion to whatever runs it.
// Dispatch must not wait for the deletion itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, req DeleteRequest) error
}

// Deleter runs a subtree deletion. Engine implements it.
type Deleter interface {
	DeleteSubtree(ctx context.Context, ownerID, targetID string) error
}

// LocalOption configures a LocalDispatcher.
type LocalOption func(*LocalDispatcher)

// WithResultHandler is called after every deletion with its outcome.
func WithResultHandler(fn func(DeleteRequest, error)) LocalOption {
	return func(d *LocalDispatcher) {
		d.onResult = fn
	}
}

// WithDeleteTimeout bounds each deletion. Zero means no limit.
func WithDeleteTimeout(t time.Duration) LocalOption {
	return func(d *LocalDispatcher) {
		d.timeout = t
	}
}

func withLocalLogger(l *slog.Logger) LocalOption {
	return func(d *LocalDispatcher) {
		d.logger = l
	}
}

// LocalDispatcher runs each deletion in its own goroutine. Deletions
// outlive the request that started them. Work is lost if the process exits
// first; the orphan sweep cleans up what remains.
type LocalDispatcher struct {
	deleter  Deleter
	logger   *slog.Logger
	onResult func(DeleteRequest, error)
	wg       sync.WaitGroup
	timeout  time.Duration
}

// NewLocalDispatcher creates an in-process dispatcher.
func NewLocalDispatcher(d Deleter, opts ...LocalOption) *LocalDispatcher {
	ld := &LocalDispatcher{deleter: d, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Dispatch starts the deletion and returns immediately.
func (d *LocalDispatcher) Dispatch(ctx context.Context, req DeleteRequest) error {
	detached := context.WithoutCancel(ctx)

	d.wg.Go(func() {
		jobCtx := detached
		if d.timeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(detached, d.timeout)
			defer cancel()
		}

		err := d.deleter.DeleteSubtree(jobCtx, req.OwnerID, req.NodeID)
		if d.onResult != nil {
			d.onResult(req, err)
		}
	})
	return nil
}

// Wait blocks until every dispatched deletion has finished.
func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for running deletions or ctx expiry.
func (d *LocalDispatcher) Shutdown() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			d.logger.WarnContext(ctx, "shutdown interrupted running subtree deletions")
			return ctx.Err()
		}
	}
}

// Enqueuer is satisfied by *job.Manager.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// JobDispatcher enqueues deletions as DeleteSubtreeTask jobs, so they
// survive restarts and are retried on failure.
type JobDispatcher struct {
	queue Enqueuer
}

// NewJobDispatcher creates a queue-backed dispatcher. The worker side must
// register NewDeleteSubtreeTask.
func NewJobDispatcher(q Enqueuer) *JobDispatcher {
	return &JobDispatcher{queue: q}
}

// Dispatch enqueues the deletion. Repeated requests for the same node within
// a minute are collapsed into one job.
func (d *JobDispatcher) Dispatch(ctx context.Context, req DeleteRequest) error {
	err := d.queue.Enqueue(ctx, DeleteSubtreeTaskName, req,
		job.Unique(req.OwnerID+"/"+req.NodeID, time.Minute),
		job.MaxAttempts(10),
	)
	if err != nil {
		return fmt.Errorf("enqueue subtree deletion: %w", err)
	}
	return nil
}

var (
	_ Dispatcher = (*LocalDispatcher)(nil)
	_ Dispatcher = (*JobDispatcher)(nil)
	_ Deleter    = (*Engine)(nil)
)
