package notifier

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/schedule"
)

type NotifyTask struct {
	scheduler *Scheduler
}

func NewTask(scheduler *Scheduler) schedule.Task {
	return &NotifyTask{
		scheduler: scheduler,
	}
}

func (t *NotifyTask) Run(ctx context.Context) error {
	return t.scheduler.RunTick(ctx)
}

func (t *NotifyTask) Name() string {
	return "notify subscribers task"
}
