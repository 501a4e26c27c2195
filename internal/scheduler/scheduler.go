package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is the scan surface the scheduler drives.
type Runner interface {
	ComplianceScan(ctx context.Context, now time.Time) error
	HealthScan(ctx context.Context, now time.Time) error
}

type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"nextRun"`
}

// Scheduler drives the periodic scans: the compliance scan on a cron
// schedule and the health scan on a fixed interval. A failed run is logged
// and the next tick still fires.
type Scheduler struct {
	runner   Runner
	schedule cron.Schedule
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time // injectable for deterministic tests

	mu             sync.Mutex
	cancel         context.CancelFunc
	runNow         chan struct{}
	nextCompliance time.Time
	wg             sync.WaitGroup
}

func New(runner Runner, cronExpr string, healthInterval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		interval: healthInterval,
		logger:   logger,
		now:      time.Now,
		runNow:   make(chan struct{}, 1),
	}, nil
}

// Start launches the scan loop. It is safe to call Start once; subsequent
// calls are no-ops until Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.nextCompliance = s.schedule.Next(s.now())
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(loopCtx)
}

// Stop cancels the loop and waits for any in-flight scan. Cancellation lets
// the running scan finish its current evaluator and skip the rest.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// RunNow triggers an immediate full scan. The signal coalesces: triggering
// while a triggered scan is pending is a no-op.
func (s *Scheduler) RunNow() {
	select {
	case s.runNow <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []JobInfo{
		{Name: "compliance-scan", NextRun: s.nextCompliance},
		{Name: "health-scan", NextRun: s.now().Add(s.interval)},
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, s.now())
		case <-s.runNow:
			s.runAll(ctx, s.now())
		}
	}
}

// tick runs the health scan and, when the cron schedule is due, the
// compliance scan.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.runHealth(ctx, now)

	s.mu.Lock()
	due := !now.Before(s.nextCompliance)
	if due {
		s.nextCompliance = s.schedule.Next(now)
	}
	s.mu.Unlock()

	if due {
		s.runCompliance(ctx, now)
	}
}

func (s *Scheduler) runAll(ctx context.Context, now time.Time) {
	s.runCompliance(ctx, now)
	s.runHealth(ctx, now)
}

func (s *Scheduler) runCompliance(ctx context.Context, now time.Time) {
	if err := s.runner.ComplianceScan(ctx, now); err != nil {
		s.logger.Error("compliance scan failed", slog.String("error", err.Error()))
	}
}

func (s *Scheduler) runHealth(ctx context.Context, now time.Time) {
	if err := s.runner.HealthScan(ctx, now); err != nil {
		s.logger.Error("health scan failed", slog.String("error", err.Error()))
	}
}
