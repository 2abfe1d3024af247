package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// Report listing reads whole periods, so listing queries page through
// the repository in chunks of this size.
const reportPageSize = 500

// MonthlyReport aggregates one site month. The opening balance is the
// carried-forward cash position at the start of the month; the closing
// balance folds the month's collections and qualifying expenses on top
// of it.
type MonthlyReport struct {
	SiteID         uuid.UUID       `json:"site_id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Collected      decimal.Decimal `json:"collected"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	ExpenseTotal   decimal.Decimal `json:"expense_total"`
	Balance        decimal.Decimal `json:"balance"`
}

// ObligationLine itemizes one obligation inside a report period
type ObligationLine struct {
	ObligationID   uuid.UUID                `json:"obligation_id"`
	ApartmentID    uuid.UUID                `json:"apartment_id"`
	ApartmentLabel string                   `json:"apartment_label"`
	Kind           billing.ObligationKind   `json:"kind"`
	Amount         decimal.Decimal          `json:"amount"`
	LateFee        decimal.Decimal          `json:"late_fee"`
	PaidToDate     decimal.Decimal          `json:"paid_to_date"`
	Status         billing.ObligationStatus `json:"status"`
	DueDate        time.Time                `json:"due_date"`
}

// ExpenseLine itemizes one qualifying expense inside a report period
type ExpenseLine struct {
	ExpenseID     uuid.UUID       `json:"expense_id"`
	TypeName      string          `json:"type_name"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate time.Time       `json:"effective_date"`
	InvoiceNumber string          `json:"invoice_number"`
}

// MonthlyReportDetail is a MonthlyReport with its line items
type MonthlyReportDetail struct {
	MonthlyReport
	Obligations []ObligationLine `json:"obligations"`
	Expenses    []ExpenseLine    `json:"expenses"`
}

// YearlyReport folds the twelve monthly reports of a site year
type YearlyReport struct {
	SiteID         uuid.UUID       `json:"site_id"`
	Year           int             `json:"year"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Collected      decimal.Decimal `json:"collected"`
	ExpenseTotal   decimal.Decimal `json:"expense_total"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Months         []MonthlyReport `json:"months"`
}

// ReportService aggregates obligations, payments and qualifying
// expenses into period reports. All sums replay the source tables; the
// snapshot store is a pure fast path for the carried-forward opening
// balance and every aggregation overwrites it with the recomputed value.
type ReportService struct {
	apartmentRepo   site.ApartmentRepository
	obligationRepo  billing.ObligationRepository
	paymentRepo     billing.PaymentRepository
	expenseRepo     expense.ExpenseRepository
	expenseTypeRepo expense.ExpenseTypeRepository
	snapshots       cache.BalanceSnapshotStore
}

// NewReportService creates a new ReportService. snapshots may be nil to
// disable the opening-balance fast path.
func NewReportService(
	apartmentRepo site.ApartmentRepository,
	obligationRepo billing.ObligationRepository,
	paymentRepo billing.PaymentRepository,
	expenseRepo expense.ExpenseRepository,
	expenseTypeRepo expense.ExpenseTypeRepository,
	snapshots cache.BalanceSnapshotStore,
) *ReportService {
	return &ReportService{
		apartmentRepo:   apartmentRepo,
		obligationRepo:  obligationRepo,
		paymentRepo:     paymentRepo,
		expenseRepo:     expenseRepo,
		expenseTypeRepo: expenseTypeRepo,
		snapshots:       snapshots,
	}
}

// periodStart returns the first instant of the given month in UTC
func periodStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// periodEnd returns the last instant of the given month, usable as the
// inclusive upper bound of range queries.
func periodEnd(year, month int) time.Time {
	return periodStart(year, month).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// previousPeriod steps one month back
func previousPeriod(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

func validatePeriod(month int) error {
	if month < 1 || month > 12 {
		return shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
	}
	return nil
}

// cacheablePeriod reports whether the period's closing snapshot may be
// stored. Snapshot invalidation walks site months up to the present, so
// a snapshot for a later month would survive every balance-affecting
// write that should drop it.
func cacheablePeriod(year, month int) bool {
	now := time.Now().UTC()
	return year < now.Year() || (year == now.Year() && month <= int(now.Month()))
}

// OpeningBalanceForMonth returns the site's cash position carried into
// the month: all collected payments minus all qualifying expenses dated
// before the month start. The previous month's closing snapshot serves
// as a fast path; a miss replays the full history and repopulates it.
func (s *ReportService) OpeningBalanceForMonth(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	if err := validatePeriod(month); err != nil {
		return decimal.Zero, err
	}

	prevYear, prevMonth := previousPeriod(year, month)
	if s.snapshots != nil {
		closing, err := s.snapshots.Get(ctx, siteID, prevYear, prevMonth)
		if err == nil {
			return closing, nil
		}
	}

	opening, err := s.cashPositionBefore(ctx, siteID, periodStart(year, month))
	if err != nil {
		return decimal.Zero, err
	}

	if s.snapshots != nil && cacheablePeriod(prevYear, prevMonth) {
		// Cache write failures only cost the fast path.
		_ = s.snapshots.Set(ctx, siteID, prevYear, prevMonth, opening)
	}
	return opening, nil
}

// cashPositionBefore replays collected payments minus qualifying
// expenses over all history strictly before the cutoff.
func (s *ReportService) cashPositionBefore(ctx context.Context, siteID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	end := cutoff.Add(-time.Nanosecond)

	payments, err := s.paymentRepo.SumCollectedInRange(ctx, siteID, time.Time{}, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum collected payments: %w", err)
	}
	expenses, err := s.expenseRepo.SumQualifyingInRange(ctx, siteID, time.Time{}, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum qualifying expenses: %w", err)
	}
	return payments.Sub(expenses), nil
}

// MonthlyReport aggregates one site month: opening balance, collections,
// the pending remainder of the month's obligations, qualifying expense
// total and the resulting closing balance. The closing balance is
// written back to the snapshot store as the next month's fast path.
func (s *ReportService) MonthlyReport(ctx context.Context, siteID uuid.UUID, year, month int) (*MonthlyReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "monthly_report")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, siteID.String(),
		telemetry.SpanAttrYear, year,
		telemetry.SpanAttrMonth, month,
	)

	if err := validatePeriod(month); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	opening, err := s.OpeningBalanceForMonth(ctx, siteID, year, month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	from, to := periodStart(year, month), periodEnd(year, month)
	collected, err := s.paymentRepo.SumCollectedInRange(ctx, siteID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum collected payments: %w", err)
	}
	expenseTotal, err := s.expenseRepo.SumQualifyingInRange(ctx, siteID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum qualifying expenses: %w", err)
	}

	obligations, err := s.obligationsForPeriod(ctx, siteID, year, month)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	pending := decimal.Zero
	for i := range obligations {
		if obligations[i].Status == billing.ObligationStatusCancelled {
			continue
		}
		pending = pending.Add(obligations[i].Remaining())
	}

	balance := opening.Add(collected).Sub(expenseTotal)
	if s.snapshots != nil && cacheablePeriod(year, month) {
		_ = s.snapshots.Set(ctx, siteID, year, month, balance)
	}

	telemetry.SetOK(span)
	return &MonthlyReport{
		SiteID:         siteID,
		Year:           year,
		Month:          month,
		OpeningBalance: opening,
		Collected:      collected,
		PendingAmount:  pending,
		ExpenseTotal:   expenseTotal,
		Balance:        balance,
	}, nil
}

// MonthlyReportDetail returns the monthly report with every obligation
// and qualifying expense of the period itemized.
func (s *ReportService) MonthlyReportDetail(ctx context.Context, siteID uuid.UUID, year, month int) (*MonthlyReportDetail, error) {
	summary, err := s.MonthlyReport(ctx, siteID, year, month)
	if err != nil {
		return nil, err
	}

	obligations, err := s.obligationsForPeriod(ctx, siteID, year, month)
	if err != nil {
		return nil, err
	}
	labels, err := s.apartmentLabels(ctx, siteID)
	if err != nil {
		return nil, err
	}

	obligationLines := make([]ObligationLine, 0, len(obligations))
	for i := range obligations {
		o := &obligations[i]
		obligationLines = append(obligationLines, ObligationLine{
			ObligationID:   o.ID,
			ApartmentID:    o.ApartmentID,
			ApartmentLabel: labels[o.ApartmentID],
			Kind:           o.Kind,
			Amount:         o.Amount,
			LateFee:        o.LateFee,
			PaidToDate:     o.PaidToDate,
			Status:         o.Status,
			DueDate:        o.DueDate,
		})
	}

	expenses, err := s.expenseRepo.FindQualifyingInRange(ctx, siteID, periodStart(year, month), periodEnd(year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifying expenses: %w", err)
	}
	typeNames, err := s.expenseTypeNames(ctx, siteID)
	if err != nil {
		return nil, err
	}

	expenseLines := make([]ExpenseLine, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		expenseLines = append(expenseLines, ExpenseLine{
			ExpenseID:     e.ID,
			TypeName:      typeNames[e.ExpenseTypeID],
			Description:   e.Description,
			Amount:        e.Amount,
			EffectiveDate: e.EffectiveDate(),
			InvoiceNumber: e.InvoiceNumber,
		})
	}

	return &MonthlyReportDetail{
		MonthlyReport: *summary,
		Obligations:   obligationLines,
		Expenses:      expenseLines,
	}, nil
}

// YearlyReport folds the twelve monthly reports of the year. The yearly
// opening balance is the January opening balance and the closing balance
// is December's; the collected/expense totals are the sums of the
// monthly figures.
func (s *ReportService) YearlyReport(ctx context.Context, siteID uuid.UUID, year int) (*YearlyReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "yearly_report")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, siteID.String(),
		telemetry.SpanAttrYear, year,
	)

	months := make([]MonthlyReport, 0, 12)
	collected, expenseTotal := decimal.Zero, decimal.Zero
	for month := 1; month <= 12; month++ {
		monthly, err := s.MonthlyReport(ctx, siteID, year, month)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		months = append(months, *monthly)
		collected = collected.Add(monthly.Collected)
		expenseTotal = expenseTotal.Add(monthly.ExpenseTotal)
	}

	telemetry.SetOK(span)
	return &YearlyReport{
		SiteID:         siteID,
		Year:           year,
		OpeningBalance: months[0].OpeningBalance,
		Collected:      collected,
		ExpenseTotal:   expenseTotal,
		ClosingBalance: months[11].Balance,
		Months:         months,
	}, nil
}

// WarmClosingBalance recomputes the month's report so its closing
// balance lands in the snapshot cache. Used by the nightly sweep to keep
// current-month reports opening from a warm cache.
func (s *ReportService) WarmClosingBalance(ctx context.Context, siteID uuid.UUID, year, month int) error {
	_, err := s.MonthlyReport(ctx, siteID, year, month)
	return err
}

// PeriodVerification is an independent cash check over an arbitrary
// window: collected payments minus qualifying expenses, computed without
// any carried-forward bookkeeping. Auditors compare it against the
// monthly reports spanning the same window.
func (s *ReportService) PeriodVerification(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	payments, err := s.paymentRepo.SumCollectedInRange(ctx, siteID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum collected payments: %w", err)
	}
	expenses, err := s.expenseRepo.SumQualifyingInRange(ctx, siteID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum qualifying expenses: %w", err)
	}
	return payments.Sub(expenses), nil
}

// obligationsForPeriod pages through all obligations of the site period
func (s *ReportService) obligationsForPeriod(ctx context.Context, siteID uuid.UUID, year, month int) ([]billing.Obligation, error) {
	filter := billing.ObligationFilter{
		Filter: shared.Filter{Page: 1, PageSize: reportPageSize, OrderBy: "due_date", OrderDir: "asc"},
		Year:   &year,
		Month:  &month,
	}

	var all []billing.Obligation
	for {
		page, err := s.obligationRepo.FindBySite(ctx, siteID, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list obligations: %w", err)
		}
		all = append(all, page...)
		if len(page) < reportPageSize {
			return all, nil
		}
		filter.Page++
	}
}

// apartmentLabels maps apartment IDs to display labels
func (s *ReportService) apartmentLabels(ctx context.Context, siteID uuid.UUID) (map[uuid.UUID]string, error) {
	apartments, err := s.apartmentRepo.FindBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	labels := make(map[uuid.UUID]string, len(apartments))
	for i := range apartments {
		labels[apartments[i].ID] = apartments[i].Label()
	}
	return labels, nil
}

// expenseTypeNames maps expense type IDs to names
func (s *ReportService) expenseTypeNames(ctx context.Context, siteID uuid.UUID) (map[uuid.UUID]string, error) {
	types, err := s.expenseTypeRepo.FindBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	names := make(map[uuid.UUID]string, len(types))
	for i := range types {
		names[types[i].ID] = types[i].Name
	}
	return names, nil
}
