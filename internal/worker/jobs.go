package worker

import (
	"context"

	"github.com/vytor/heartgame/internal/logger"
)

// AggregateReconciler rewrites user aggregates from stored score records.
// Declared here so the worker package does not import services.
type AggregateReconciler interface {
	ReconcileAggregates(ctx context.Context) (int, error)
}

// ReconcileAggregatesJob repairs user counters that drifted from the score records.
type ReconcileAggregatesJob struct {
	Reconciler AggregateReconciler
}

func (j *ReconcileAggregatesJob) Name() string { return "reconcile_aggregates" }

func (j *ReconcileAggregatesJob) Run(ctx context.Context) error {
	n, err := j.Reconciler.ReconcileAggregates(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContext(ctx).Info("repaired aggregates for %d users", n)
	}
	return nil
}
