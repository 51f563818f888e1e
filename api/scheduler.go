/*
scheduler.go - Background schedule warmer

PURPOSE:
  Periodically resolves the coming days for every assigned employee.
  This warms the projection memo ahead of the morning rush and surfaces
  broken policies (stale step hours or day offsets) in the logs before an
  employee's schedule request hits them.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Resolves [today, today + Horizon) per employee via Engine.ResolveRange
  - Per-employee failures are logged and counted; the run continues

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Horizon: Days ahead to resolve (default: 14)
  - Enabled: Whether the warmer is active (default: true)

USAGE:
  warmer := NewScheduleWarmer(store, engine, logger)
  warmer.Start()
  // ... later
  warmer.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/shift-engine/shift"
	"github.com/warp/shift-engine/store"
)

// ScheduleWarmer resolves upcoming schedules in the background.
type ScheduleWarmer struct {
	Store         store.Store
	Engine        *shift.Engine
	Logger        zerolog.Logger
	CheckInterval time.Duration
	Horizon       int
	Enabled       bool
	Now           func() time.Time

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun WarmReport
}

// WarmReport summarises one run.
type WarmReport struct {
	StartedAt time.Time
	Employees int
	Days      int
	Failed    int
}

// NewScheduleWarmer creates a warmer with default settings.
func NewScheduleWarmer(st store.Store, engine *shift.Engine, logger zerolog.Logger) *ScheduleWarmer {
	return &ScheduleWarmer{
		Store:         st,
		Engine:        engine,
		Logger:        logger.With().Str("component", "warmer").Logger(),
		CheckInterval: 1 * time.Hour,
		Horizon:       14,
		Enabled:       true,
		Now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// Start begins the warmer.
func (sw *ScheduleWarmer) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.Enabled {
		sw.Logger.Info().Msg("disabled, not starting")
		return
	}

	sw.ticker = time.NewTicker(sw.CheckInterval)
	sw.wg.Add(1)

	go sw.run(sw.ticker)

	sw.Logger.Info().Dur("interval", sw.CheckInterval).Int("horizon_days", sw.Horizon).Msg("started")
}

// Stop stops the warmer and waits for an in-flight run.
func (sw *ScheduleWarmer) Stop() {
	sw.mu.Lock()
	ticker := sw.ticker
	sw.ticker = nil
	sw.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(sw.stop)
		sw.wg.Wait()
		sw.Logger.Info().Msg("stopped")
	}
}

func (sw *ScheduleWarmer) run(ticker *time.Ticker) {
	defer sw.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sw.stop
		cancel()
	}()

	// Run immediately on start
	sw.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			sw.RunOnce(ctx)
		case <-sw.stop:
			return
		}
	}
}

// RunOnce resolves the horizon for every employee and returns the report.
func (sw *ScheduleWarmer) RunOnce(ctx context.Context) WarmReport {
	now := sw.Now()
	report := WarmReport{StartedAt: now}

	employees, err := sw.Store.Employees(ctx)
	if err != nil {
		sw.Logger.Error().Err(err).Msg("listing employees")
		return report
	}

	from := shift.DateOf(now.In(sw.Engine.Location))
	to := from.AddDays(sw.Horizon - 1)

	for _, emp := range employees {
		if ctx.Err() != nil {
			break
		}
		days, err := sw.Engine.ResolveRange(ctx, emp, from, to)
		if err != nil {
			report.Failed++
			sw.Logger.Warn().Err(err).Str("employee_id", string(emp)).Msg("schedule does not resolve")
			continue
		}
		report.Employees++
		report.Days += len(days)
	}

	sw.mu.Lock()
	sw.lastRun = report
	sw.mu.Unlock()

	sw.Logger.Info().
		Int("employees", report.Employees).
		Int("days", report.Days).
		Int("failed", report.Failed).
		Msg("warm run complete")
	return report
}

// LastRun returns the report of the most recent run.
func (sw *ScheduleWarmer) LastRun() WarmReport {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.lastRun
}

// NextRunTime returns when the next run is due.
func (sw *ScheduleWarmer) NextRunTime() time.Time {
	return sw.LastRun().StartedAt.Add(sw.CheckInterval)
}
