package jobs

import "time"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueReconcile() error
	// ScheduleReconcile enqueues a reconcile now and then every interval.
	// A non-positive interval runs it once.
	ScheduleReconcile(interval time.Duration) error
	Stop()
}
