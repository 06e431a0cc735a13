package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"IndexNotifier/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// Runner performs one notification cycle.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// parser accepts standard 5-field expressions, an optional leading seconds field, and descriptors like @daily.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler invokes the runner on a cron schedule. Runs never overlap.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Log    *slog.Logger
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler bound to ctx; cancelling ctx aborts an in-flight run.
func NewScheduler(ctx context.Context, runner Runner, log *slog.Logger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Runner: runner,
		Log:    log,
		Ctx:    ctx,
	}
}

// ValidateSpec reports whether expr is a usable schedule.
func ValidateSpec(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Register adds the notification job.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.runOnce); err != nil {
		return fmt.Errorf("register notification task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	for _, e := range s.Cron.Entries() {
		s.Log.Info("scheduler started", "next_run", e.Next)
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes one cycle immediately.
func (s *Scheduler) RunNow() {
	s.runOnce()
}

// runOnce logs a failed run and leaves the schedule in place.
func (s *Scheduler) runOnce() {
	rep, err := s.Runner.Run(s.Ctx)
	if err != nil {
		s.Log.Error("scheduled run failed", "err", err)
		return
	}
	s.Log.Info("scheduled run finished", "run_id", rep.RunID, "delivered", rep.Delivered)
}
