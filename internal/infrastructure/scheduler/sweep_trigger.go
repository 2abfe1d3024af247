package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SiteProvider provides the list of sites to sweep
type SiteProvider interface {
	ActiveSiteIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SweepTriggerConfig holds configuration for the sweep trigger
type SweepTriggerConfig struct {
	// AccrualHour and AccrualMinute fix the once-daily dues accrual run (24h clock)
	AccrualHour   int
	AccrualMinute int

	// DeductionInterval is how often the due-expense deduction sweep runs
	DeductionInterval time.Duration

	// LateFeeInterval is how often the late fee sweep runs
	LateFeeInterval time.Duration

	// CheckInterval is how often the accrual clock is checked
	CheckInterval time.Duration
}

// DefaultSweepTriggerConfig returns default sweep trigger configuration
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		AccrualHour:       2,
		AccrualMinute:     15,
		DeductionInterval: time.Hour,
		LateFeeInterval:   6 * time.Hour,
		CheckInterval:     time.Minute,
	}
}

// SweepTrigger drives the periodic sweeps: a once-daily dues accrual,
// plus interval-based deduction and late fee runs.
type SweepTrigger struct {
	config       SweepTriggerConfig
	scheduler    *Scheduler
	siteProvider SiteProvider
	logger       *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastAccrual string // date of the last accrual run, yyyy-mm-dd
}

// NewSweepTrigger creates a new sweep trigger
func NewSweepTrigger(
	config SweepTriggerConfig,
	scheduler *Scheduler,
	siteProvider SiteProvider,
	logger *zap.Logger,
) *SweepTrigger {
	return &SweepTrigger{
		config:       config,
		scheduler:    scheduler,
		siteProvider: siteProvider,
		logger:       logger,
	}
}

// Start starts the sweep trigger
func (c *SweepTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Sweep trigger started",
		zap.Int("accrual_hour", c.config.AccrualHour),
		zap.Int("accrual_minute", c.config.AccrualMinute),
		zap.Duration("deduction_interval", c.config.DeductionInterval),
		zap.Duration("late_fee_interval", c.config.LateFeeInterval),
	)

	return nil
}

// Stop stops the sweep trigger
func (c *SweepTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop drives the three sweep clocks off independent tickers
func (c *SweepTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	clock := time.NewTicker(c.config.CheckInterval)
	defer clock.Stop()

	deduction := time.NewTicker(c.config.DeductionInterval)
	defer deduction.Stop()

	lateFee := time.NewTicker(c.config.LateFeeInterval)
	defer lateFee.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-clock.C:
			c.checkAccrual(ctx)
		case <-deduction.C:
			c.triggerDeduction()
		case <-lateFee.C:
			c.triggerLateFees(ctx)
		}
	}
}

// checkAccrual fires the accrual sweep once per day at the configured time
func (c *SweepTrigger) checkAccrual(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastAccrual == currentDate {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.accrualDue(now) {
		return
	}

	c.mu.Lock()
	c.lastAccrual = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering dues accrual sweep")
	c.triggerAccrual(ctx, now)
	c.triggerReportWarmup(ctx, now)
}

// accrualDue reports whether the accrual run time has arrived
func (c *SweepTrigger) accrualDue(now time.Time) bool {
	return now.Hour() == c.config.AccrualHour && now.Minute() == c.config.AccrualMinute
}

// triggerAccrual schedules an accrual job per site
func (c *SweepTrigger) triggerAccrual(ctx context.Context, asOf time.Time) {
	siteIDs, err := c.siteProvider.ActiveSiteIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list sites for accrual sweep", zap.Error(err))
		return
	}

	c.logger.Info("Scheduling dues accrual for sites",
		zap.Int("site_count", len(siteIDs)),
	)

	for _, siteID := range siteIDs {
		sid := siteID
		if err := c.scheduler.ScheduleAccrual(&sid, asOf); err != nil {
			c.logger.Error("Failed to schedule dues accrual for site",
				zap.String("site_id", siteID.String()),
				zap.Error(err),
			)
		}
	}
}

// triggerDeduction schedules the cross-site due-expense deduction sweep
func (c *SweepTrigger) triggerDeduction() {
	if err := c.scheduler.ScheduleDeduction(time.Now()); err != nil {
		c.logger.Error("Failed to schedule expense deduction sweep", zap.Error(err))
	}
}

// triggerLateFees schedules a late fee job per site
func (c *SweepTrigger) triggerLateFees(ctx context.Context) {
	siteIDs, err := c.siteProvider.ActiveSiteIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list sites for late fee sweep", zap.Error(err))
		return
	}

	now := time.Now()
	for _, siteID := range siteIDs {
		sid := siteID
		if err := c.scheduler.ScheduleLateFees(&sid, now); err != nil {
			c.logger.Error("Failed to schedule late fees for site",
				zap.String("site_id", siteID.String()),
				zap.Error(err),
			)
		}
	}
}

// triggerReportWarmup schedules a report cache warmup per site, piggybacking
// on the daily accrual run
func (c *SweepTrigger) triggerReportWarmup(ctx context.Context, asOf time.Time) {
	siteIDs, err := c.siteProvider.ActiveSiteIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list sites for report warmup sweep", zap.Error(err))
		return
	}

	for _, siteID := range siteIDs {
		sid := siteID
		if err := c.scheduler.ScheduleReportWarmup(&sid, asOf); err != nil {
			c.logger.Error("Failed to schedule report warmup for site",
				zap.String("site_id", siteID.String()),
				zap.Error(err),
			)
		}
	}
}

// TriggerManualSweep allows operators to fire a sweep out of schedule
func (c *SweepTrigger) TriggerManualSweep(ctx context.Context, siteID *uuid.UUID, kind JobKind, asOf time.Time) error {
	switch kind {
	case JobKindAccrueDues:
		return c.scheduler.ScheduleAccrual(siteID, asOf)
	case JobKindDeductExpenses:
		return c.scheduler.ScheduleDeduction(asOf)
	case JobKindApplyLateFees:
		return c.scheduler.ScheduleLateFees(siteID, asOf)
	case JobKindWarmReports:
		return c.scheduler.ScheduleReportWarmup(siteID, asOf)
	default:
		return ErrUnknownJobKind
	}
}
