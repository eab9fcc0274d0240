package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"expert-ai/spendguard/pkg/breaker/audit"
	"expert-ai/spendguard/pkg/breaker/ledger"
)

// DefaultSchedule runs a sweep at the top of every hour.
const DefaultSchedule = "0 * * * *"

// Config contains configuration for the sweeper.
type Config struct {
	// Schedule is a standard cron expression. Empty disables the
	// sweeper. Default: DefaultSchedule.
	Schedule string

	// AuditRetention is how long audit sink records are kept. Zero
	// disables audit cleanup.
	AuditRetention time.Duration

	// Logger for sweep activity. Defaults to slog.Default.
	Logger *slog.Logger
}

// Sweeper periodically evicts expired ledger events and prunes old audit
// records.
type Sweeper struct {
	ledger  *ledger.Ledger
	sink    audit.Sink
	config  Config
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given ledger and optional audit
// sink (nil disables audit cleanup).
func NewSweeper(l *ledger.Ledger, sink audit.Sink, cfg Config) *Sweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		ledger: l,
		sink:   sink,
		config: cfg,
		cron:   cron.New(),
		logger: logger.With("component", "breaker.retention"),
	}
}

// Start schedules sweeps according to the configured cron expression and
// begins running them. It returns immediately; sweeps run on the cron
// goroutine until Stop is called or the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already running")
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention sweeper started",
		"schedule", s.config.Schedule,
		"ledger_retention", s.ledger.Retention(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one sweep cycle.
func (s *Sweeper) runSweep(ctx context.Context) {
	now := time.Now()

	evicted := s.ledger.Sweep(now)
	if evicted > 0 {
		s.logger.Info("ledger sweep completed", "evicted_events", evicted)
	} else {
		s.logger.Debug("ledger sweep completed, nothing evicted")
	}

	if s.sink == nil || s.config.AuditRetention <= 0 {
		return
	}

	removed, err := s.sink.Cleanup(ctx, now.Add(-s.config.AuditRetention))
	if err != nil {
		s.logger.Error("audit cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("audit cleanup completed", "removed_records", removed)
	}
}

// SweepNow runs one sweep cycle immediately, outside the schedule.
func (s *Sweeper) SweepNow(ctx context.Context) {
	s.runSweep(ctx)
}

// Stop stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info("retention sweeper stopped")
}

// IsRunning returns true while the schedule is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when the sweeper
// is not running.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
