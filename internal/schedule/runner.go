package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/KNICEX/market-pulse/internal/metrics"
	"github.com/go-co-op/gocron"
)

// Runner triggers tasks on fixed intervals. A task never overlaps with itself: a run that is
// still going when the next one is due makes that next one skipped.
type Runner struct {
	cron   *gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRunner() *Runner {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cron:   cron,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add 间隔 <= 0 表示不启用
func (r *Runner) Add(task Task, interval time.Duration) error {
	if interval <= 0 {
		slog.Info("scheduled task disabled", "task", task.Name())
		return nil
	}
	_, err := r.cron.Every(interval).Do(func() {
		_ = Run(r.ctx, task)
	})
	if err != nil {
		return err
	}
	slog.Info("scheduled task registered", "task", task.Name(), "interval", interval)
	return nil
}

func (r *Runner) Start() {
	r.cron.StartAsync()
}

// Stop cancels the context of in-flight runs and waits for the scheduler to stop.
func (r *Runner) Stop() {
	r.cancel()
	r.cron.Stop()
}

// Run executes one task run with logging and timing.
func Run(ctx context.Context, task Task) error {
	start := time.Now()
	slog.Info("task start", "task", task.Name())

	err := task.Run(ctx)
	cost := time.Since(start)
	if err != nil {
		metrics.TaskDuration.WithLabelValues(task.Name(), "error").Observe(cost.Seconds())
		slog.Error("task failed", "task", task.Name(), "cost", cost, "error", err)
		return err
	}
	metrics.TaskDuration.WithLabelValues(task.Name(), "ok").Observe(cost.Seconds())
	slog.Info("task done", "task", task.Name(), "cost", cost)
	return nil
}
