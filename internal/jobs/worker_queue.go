package jobs

import (
	"sync"
	"time"

	"github.com/vytor/heartgame/internal/clock"
	"github.com/vytor/heartgame/internal/logger"
	"github.com/vytor/heartgame/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool       *worker.Pool
	reconciler worker.AggregateReconciler
	clock      clock.Clock
	log        *logger.Logger

	mu      sync.Mutex
	timer   clock.Timer
	stopped bool
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, reconciler worker.AggregateReconciler, clk clock.Clock) JobQueue {
	if clk == nil {
		clk = clock.New()
	}
	return &WorkerQueue{
		pool:       pool,
		reconciler: reconciler,
		clock:      clk,
		log:        logger.Default().WithPrefix("jobs"),
	}
}

func (q *WorkerQueue) EnqueueReconcile() error {
	return q.pool.Submit(&worker.ReconcileAggregatesJob{Reconciler: q.reconciler})
}

func (q *WorkerQueue) ScheduleReconcile(interval time.Duration) error {
	if err := q.EnqueueReconcile(); err != nil {
		return err
	}
	if interval <= 0 {
		q.log.Debug("reconcile scheduled once")
		return nil
	}
	q.log.Info("reconciling aggregates every %v", interval)
	q.arm(interval)
	return nil
}

func (q *WorkerQueue) arm(interval time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.timer = q.clock.AfterFunc(interval, func() {
		if err := q.EnqueueReconcile(); err != nil {
			q.log.Warn("failed to enqueue reconcile: %v", err)
		}
		q.arm(interval)
	})
}

// Stop cancels the schedule. The pool is stopped by its owner.
func (q *WorkerQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
