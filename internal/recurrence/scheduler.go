package recurrence

import (
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the engine daily at midnight.
const DefaultSchedule = "0 0 * * *"

// Scheduler runs the engine on a cron schedule. Invocations are
// serialized: if a run is still in progress when the next tick fires, the
// tick is skipped so two runs can never select overlapping candidate sets.
type Scheduler struct {
	engine *Engine
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.Mutex
}

// NewScheduler creates a scheduler for the given cron expression.
func NewScheduler(engine *Engine, schedule string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		engine: engine,
		cron:   cron.New(),
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("recurrence scheduler started")
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("recurrence scheduler stopped")
}

func (s *Scheduler) run() {
	if !s.mu.TryLock() {
		s.logger.Warn("previous recurrence run still in progress, skipping")
		return
	}
	defer s.mu.Unlock()

	if _, err := s.engine.ProcessRecurringChores(); err != nil {
		s.logger.Error("recurrence run failed", "error", err)
	}
}
