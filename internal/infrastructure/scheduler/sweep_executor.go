package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/condo/backend/internal/infrastructure/logger"
)

// DuesAccruer creates the monthly dues obligations for a site
type DuesAccruer interface {
	EnsureMonthlyDues(ctx context.Context, siteID uuid.UUID, year, month int) (int, error)
}

// ExpenseDeductor posts bank deductions for expenses past their due date
type ExpenseDeductor interface {
	AutoDeductDueExpenses(ctx context.Context, asOf time.Time) (int, error)
}

// LateFeeApplier applies late fees to overdue obligations of a site
type LateFeeApplier interface {
	ApplyLateFees(ctx context.Context, siteID uuid.UUID, asOf time.Time) (int, error)
}

// ReportWarmer recomputes and caches the closing balance of a period
type ReportWarmer interface {
	WarmClosingBalance(ctx context.Context, siteID uuid.UUID, year, month int) error
}

// SweepExecutor dispatches sweep jobs to the billing and banking services
type SweepExecutor struct {
	accruer      DuesAccruer
	deductor     ExpenseDeductor
	lateFees     LateFeeApplier
	warmer       ReportWarmer
	siteProvider SiteProvider
	logger       *zap.Logger
}

// NewSweepExecutor creates a new sweep executor
func NewSweepExecutor(
	accruer DuesAccruer,
	deductor ExpenseDeductor,
	lateFees LateFeeApplier,
	warmer ReportWarmer,
	siteProvider SiteProvider,
	log *zap.Logger,
) *SweepExecutor {
	return &SweepExecutor{
		accruer:      accruer,
		deductor:     deductor,
		lateFees:     lateFees,
		warmer:       warmer,
		siteProvider: siteProvider,
		logger:       log,
	}
}

// Execute runs a single sweep job
func (e *SweepExecutor) Execute(ctx context.Context, job *Job) error {
	ctx, log := logger.WithJob(ctx, e.logger, string(job.Kind))

	switch job.Kind {
	case JobKindAccrueDues:
		return e.accrue(ctx, log, job)
	case JobKindDeductExpenses:
		return e.deduct(ctx, log, job)
	case JobKindApplyLateFees:
		return e.applyLateFees(ctx, log, job)
	case JobKindWarmReports:
		return e.warmReports(ctx, log, job)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}

// accrue runs the dues accrual for one site, or every site when none is set
func (e *SweepExecutor) accrue(ctx context.Context, log *zap.Logger, job *Job) error {
	siteIDs, err := e.resolveSites(ctx, job.SiteID)
	if err != nil {
		return err
	}

	for _, siteID := range siteIDs {
		siteCtx, siteLog := logger.WithSiteID(ctx, log, siteID.String())
		created, err := e.accruer.EnsureMonthlyDues(siteCtx, siteID, job.Year, job.Month)
		if err != nil {
			return fmt.Errorf("accrue dues for site %s: %w", siteID, err)
		}
		siteLog.Info("Dues accrual completed",
			zap.Int("year", job.Year),
			zap.Int("month", job.Month),
			zap.Int("obligations_created", created),
		)
	}
	return nil
}

// deduct runs the cross-site due-expense deduction
func (e *SweepExecutor) deduct(ctx context.Context, log *zap.Logger, job *Job) error {
	deducted, err := e.deductor.AutoDeductDueExpenses(ctx, job.AsOf)
	if err != nil {
		return fmt.Errorf("deduct due expenses: %w", err)
	}
	log.Info("Expense deduction sweep completed",
		zap.Int("expenses_deducted", deducted),
	)
	return nil
}

// applyLateFees runs the late fee sweep for one site, or every site
func (e *SweepExecutor) applyLateFees(ctx context.Context, log *zap.Logger, job *Job) error {
	siteIDs, err := e.resolveSites(ctx, job.SiteID)
	if err != nil {
		return err
	}

	for _, siteID := range siteIDs {
		siteCtx, siteLog := logger.WithSiteID(ctx, log, siteID.String())
		applied, err := e.lateFees.ApplyLateFees(siteCtx, siteID, job.AsOf)
		if err != nil {
			return fmt.Errorf("apply late fees for site %s: %w", siteID, err)
		}
		siteLog.Info("Late fee sweep completed",
			zap.Int("fees_applied", applied),
		)
	}
	return nil
}

// warmReports recomputes the previous month's closing balance for one site,
// or every site, so that current-month reports open from the cache
func (e *SweepExecutor) warmReports(ctx context.Context, log *zap.Logger, job *Job) error {
	year, month := job.Year, job.Month-1
	if month == 0 {
		year, month = year-1, 12
	}

	siteIDs, err := e.resolveSites(ctx, job.SiteID)
	if err != nil {
		return err
	}

	for _, siteID := range siteIDs {
		siteCtx, siteLog := logger.WithSiteID(ctx, log, siteID.String())
		if err := e.warmer.WarmClosingBalance(siteCtx, siteID, year, month); err != nil {
			return fmt.Errorf("warm closing balance for site %s: %w", siteID, err)
		}
		siteLog.Info("Report cache warmed",
			zap.Int("year", year),
			zap.Int("month", month),
		)
	}
	return nil
}

func (e *SweepExecutor) resolveSites(ctx context.Context, siteID *uuid.UUID) ([]uuid.UUID, error) {
	if siteID != nil {
		return []uuid.UUID{*siteID}, nil
	}
	return e.siteProvider.ActiveSiteIDs(ctx)
}

var _ JobExecutor = (*SweepExecutor)(nil)
