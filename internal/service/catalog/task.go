package catalog

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/schedule"
)

type ReconcileTask struct {
	reconciler *Reconciler
}

func NewTask(reconciler *Reconciler) schedule.Task {
	return &ReconcileTask{
		reconciler: reconciler,
	}
}

func (t *ReconcileTask) Run(ctx context.Context) error {
	_, err := t.reconciler.Reconcile(ctx)
	return err
}

func (t *ReconcileTask) Name() string {
	return "catalog reconcile task"
}
