package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/cache"
)

type reportFixture struct {
	apartments  *mockApartmentRepo
	obligations *mockObligationRepo
	payments    *mockPaymentRepo
	expenses    *mockExpenseRepo
	types       *mockExpenseTypeRepo
	snapshots   *cache.InMemoryBalanceSnapshotStore
	svc         *ReportService
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		apartments:  new(mockApartmentRepo),
		obligations: new(mockObligationRepo),
		payments:    new(mockPaymentRepo),
		expenses:    new(mockExpenseRepo),
		types:       new(mockExpenseTypeRepo),
		snapshots:   cache.NewInMemoryBalanceSnapshotStore(),
	}
	f.svc = NewReportService(f.apartments, f.obligations, f.payments, f.expenses, f.types, f.snapshots)
	return f
}

// openRange matches the zero lower bound of full-history sums
var openRange = time.Time{}

// inMonth matches any non-zero range bound
var inMonth = mock.MatchedBy(func(t time.Time) bool { return !t.IsZero() })

func newPeriodObligation(t *testing.T, siteID, apartmentID uuid.UUID, year, month int, amount int64) billing.Obligation {
	t.Helper()
	o, err := billing.NewObligation(
		siteID, apartmentID, year, month,
		billing.ObligationKindDues,
		decimal.NewFromInt(amount),
		site.EndOfMonth(year, month),
		site.ClampToMonth(year, month, 1),
		site.ClampToMonth(year, month, 20),
		"",
	)
	require.NoError(t, err)
	return *o
}

func TestOpeningBalanceReplaysHistoryAndCaches(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	f.payments.On("SumCollectedInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.NewFromInt(5000), nil).Once()
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.NewFromInt(1500), nil).Once()

	opening, err := f.svc.OpeningBalanceForMonth(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, opening.Equal(decimal.NewFromInt(3500)))

	// The recomputed value is cached as the February closing balance, so
	// a second call must not touch the repositories again.
	cached, err := f.snapshots.Get(context.Background(), siteID, 2025, 2)
	require.NoError(t, err)
	assert.True(t, cached.Equal(opening))

	again, err := f.svc.OpeningBalanceForMonth(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, again.Equal(opening))
	f.payments.AssertExpectations(t)
	f.expenses.AssertExpectations(t)
}

func TestOpeningBalanceJanuaryUsesDecemberSnapshot(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	require.NoError(t, f.snapshots.Set(context.Background(), siteID, 2024, 12, decimal.NewFromInt(777)))

	opening, err := f.svc.OpeningBalanceForMonth(context.Background(), siteID, 2025, 1)
	require.NoError(t, err)
	assert.True(t, opening.Equal(decimal.NewFromInt(777)))
}

func TestOpeningBalanceRejectsBadPeriod(t *testing.T) {
	f := newReportFixture()
	_, err := f.svc.OpeningBalanceForMonth(context.Background(), uuid.New(), 2025, 13)
	require.Error(t, err)
}

func TestMonthlyReportAggregatesPeriod(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	// Carried-forward opening comes from the snapshot fast path.
	require.NoError(t, f.snapshots.Set(context.Background(), siteID, 2025, 2, decimal.NewFromInt(3500)))

	f.payments.On("SumCollectedInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(900), nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(400), nil)

	open := newPeriodObligation(t, siteID, uuid.New(), 2025, 3, 300)
	require.NoError(t, open.RefreshPaidTotal(decimal.NewFromInt(150)))
	paid := newPeriodObligation(t, siteID, uuid.New(), 2025, 3, 600)
	require.NoError(t, paid.RefreshPaidTotal(decimal.NewFromInt(600)))
	cancelled := newPeriodObligation(t, siteID, uuid.New(), 2025, 3, 250)
	require.NoError(t, cancelled.Cancel())

	f.obligations.On("FindBySite", mock.Anything, siteID, mock.Anything).
		Return([]billing.Obligation{open, paid, cancelled}, nil)

	monthly, err := f.svc.MonthlyReport(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)

	assert.True(t, monthly.OpeningBalance.Equal(decimal.NewFromInt(3500)))
	assert.True(t, monthly.Collected.Equal(decimal.NewFromInt(900)))
	assert.True(t, monthly.ExpenseTotal.Equal(decimal.NewFromInt(400)))
	// Only the partially paid obligation still pends; cancelled is skipped.
	assert.True(t, monthly.PendingAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, monthly.Balance.Equal(decimal.NewFromInt(4000)))

	// The closing balance becomes April's opening via the snapshot store.
	closing, err := f.snapshots.Get(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)
	assert.True(t, closing.Equal(monthly.Balance))
}

func TestMonthlyReportDoesNotCacheFuturePeriods(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	f.payments.On("SumCollectedInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.Zero, nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.Zero, nil)
	f.payments.On("SumCollectedInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.Zero, nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.Zero, nil)
	f.obligations.On("FindBySite", mock.Anything, siteID, mock.Anything).
		Return([]billing.Obligation{}, nil)

	year := time.Now().UTC().Year() + 1

	_, err := f.svc.MonthlyReport(context.Background(), siteID, year, 6)
	require.NoError(t, err)

	// A month that has not arrived yet leaves no snapshot behind:
	// invalidation only walks months up to the present, so a future key
	// would outlive the writes that should drop it.
	_, err = f.snapshots.Get(context.Background(), siteID, year, 6)
	assert.ErrorIs(t, err, cache.ErrSnapshotMiss)
	_, err = f.snapshots.Get(context.Background(), siteID, year, 5)
	assert.ErrorIs(t, err, cache.ErrSnapshotMiss)
}

func TestMonthlyReportDetailItemizesPeriod(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	require.NoError(t, f.snapshots.Set(context.Background(), siteID, 2025, 2, decimal.Zero))
	f.payments.On("SumCollectedInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(150), nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(80), nil)

	apt, err := site.NewApartment(siteID, "A", "12")
	require.NoError(t, err)
	obligation := newPeriodObligation(t, siteID, apt.ID, 2025, 3, 300)

	expType, err := expense.NewExpenseType(siteID, "Electricity")
	require.NoError(t, err)
	exp, err := expense.NewExpense(siteID, expType.ID, "February bill", decimal.NewFromInt(80), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	exp.InvoiceNumber = "INV-042"

	f.obligations.On("FindBySite", mock.Anything, siteID, mock.Anything).
		Return([]billing.Obligation{obligation}, nil)
	f.apartments.On("FindBySite", mock.Anything, siteID).
		Return([]site.Apartment{*apt}, nil)
	f.expenses.On("FindQualifyingInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return([]expense.Expense{*exp}, nil)
	f.types.On("FindBySite", mock.Anything, siteID).
		Return([]expense.ExpenseType{*expType}, nil)

	detail, err := f.svc.MonthlyReportDetail(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)

	require.Len(t, detail.Obligations, 1)
	assert.Equal(t, "A 12", detail.Obligations[0].ApartmentLabel)
	assert.True(t, detail.Obligations[0].Amount.Equal(decimal.NewFromInt(300)))

	require.Len(t, detail.Expenses, 1)
	assert.Equal(t, "Electricity", detail.Expenses[0].TypeName)
	assert.Equal(t, "INV-042", detail.Expenses[0].InvoiceNumber)
	assert.True(t, detail.Expenses[0].Amount.Equal(decimal.NewFromInt(80)))
}

func TestYearlyReportFoldsMonthlyReports(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	// Full-history sums before January are zero; every month collects 100
	// and spends 40.
	f.payments.On("SumCollectedInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.Zero, nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, openRange, mock.Anything).
		Return(decimal.Zero, nil)
	f.payments.On("SumCollectedInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(100), nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, inMonth, mock.Anything).
		Return(decimal.NewFromInt(40), nil)
	f.obligations.On("FindBySite", mock.Anything, siteID, mock.Anything).
		Return([]billing.Obligation{}, nil)

	yearly, err := f.svc.YearlyReport(context.Background(), siteID, 2025)
	require.NoError(t, err)

	require.Len(t, yearly.Months, 12)
	assert.True(t, yearly.OpeningBalance.IsZero())
	assert.True(t, yearly.Collected.Equal(decimal.NewFromInt(1200)))
	assert.True(t, yearly.ExpenseTotal.Equal(decimal.NewFromInt(480)))
	assert.True(t, yearly.ClosingBalance.Equal(decimal.NewFromInt(720)))

	// The fold must match the months: each opening is the previous close.
	running := yearly.OpeningBalance
	for _, m := range yearly.Months {
		assert.True(t, m.OpeningBalance.Equal(running), "month %d opening", m.Month)
		running = running.Add(m.Collected).Sub(m.ExpenseTotal)
		assert.True(t, m.Balance.Equal(running), "month %d closing", m.Month)
	}
}

func TestPeriodVerificationIsPureCashFlow(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	f.payments.On("SumCollectedInRange", mock.Anything, siteID, from, to).
		Return(decimal.NewFromInt(1200), nil)
	f.expenses.On("SumQualifyingInRange", mock.Anything, siteID, from, to).
		Return(decimal.NewFromInt(480), nil)

	verified, err := f.svc.PeriodVerification(context.Background(), siteID, from, to)
	require.NoError(t, err)
	assert.True(t, verified.Equal(decimal.NewFromInt(720)))
}

func TestObligationsForPeriodPagesThrough(t *testing.T) {
	siteID := uuid.New()
	f := newReportFixture()

	full := make([]billing.Obligation, reportPageSize)
	for i := range full {
		full[i] = newPeriodObligation(t, siteID, uuid.New(), 2025, 3, 100)
	}
	rest := []billing.Obligation{newPeriodObligation(t, siteID, uuid.New(), 2025, 3, 100)}

	f.obligations.On("FindBySite", mock.Anything, siteID, mock.MatchedBy(func(filter billing.ObligationFilter) bool {
		return filter.Page == 1
	})).Return(full, nil).Once()
	f.obligations.On("FindBySite", mock.Anything, siteID, mock.MatchedBy(func(filter billing.ObligationFilter) bool {
		return filter.Page == 2
	})).Return(rest, nil).Once()

	all, err := f.svc.obligationsForPeriod(context.Background(), siteID, 2025, 3)
	require.NoError(t, err)
	assert.Len(t, all, reportPageSize+1)
	f.obligations.AssertExpectations(t)
}
