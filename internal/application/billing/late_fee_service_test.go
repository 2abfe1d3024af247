package billing

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
	"github.com/condo/backend/internal/domain/site"
)

func newLateFeeSite(t *testing.T, ratePercent string, graceDays int) *site.Site {
	t.Helper()
	st := newTestSite(t, "300")
	rate := decimal.RequireFromString(ratePercent)
	st.LateFeeRatePercent = &rate
	st.LateFeeGraceDays = &graceDays
	return st
}

func overdueObligation(t *testing.T, st *site.Site, amount string, dueDate time.Time) billing.Obligation {
	t.Helper()
	o, err := billing.NewObligation(
		st.ID, uuid.New(), 2025, 1,
		billing.ObligationKindDues,
		decimal.RequireFromString(amount),
		dueDate,
		dueDate.AddDate(0, 0, -30),
		dueDate,
		"Dues",
	)
	require.NoError(t, err)
	return *o
}

func TestApplyLateFeesAccruesOnce(t *testing.T) {
	st := newLateFeeSite(t, "5", 10)
	asOf := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC) // 43 days late

	o := overdueObligation(t, st, "300", dueDate)

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
	obligationRepo.On("FindOverdue", mock.Anything, st.ID, asOf).Return([]billing.Obligation{o}, nil)

	var saved *billing.Obligation
	obligationRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*billing.Obligation)
	}).Return(nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	// 300 * 5% * floor(43/30) = 15.00
	require.NotNil(t, saved)
	assert.True(t, saved.LateFee.Equal(decimal.RequireFromString("15.00")))
	assert.Equal(t, billing.ObligationStatusOverdue, saved.Status)
}

func TestApplyLateFeesSkipsObligationsWithFee(t *testing.T) {
	st := newLateFeeSite(t, "5", 10)
	asOf := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	o := overdueObligation(t, st, "300", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, o.AddLateFee(decimal.NewFromInt(15)))

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
	obligationRepo.On("FindOverdue", mock.Anything, st.ID, asOf).Return([]billing.Obligation{o}, nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, asOf)
	require.NoError(t, err)
	assert.Zero(t, applied)
	obligationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestApplyLateFeesSkipsWithinGrace(t *testing.T) {
	st := newLateFeeSite(t, "5", 10)
	dueDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	asOf := dueDate.AddDate(0, 0, 5) // 5 days late, grace is 10

	o := overdueObligation(t, st, "300", dueDate)

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
	obligationRepo.On("FindOverdue", mock.Anything, st.ID, asOf).Return([]billing.Obligation{o}, nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, asOf)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestApplyLateFeesMarksOverdueBeforeFirstFeeBlock(t *testing.T) {
	st := newLateFeeSite(t, "10", 5)
	dueDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	asOf := dueDate.AddDate(0, 0, 10) // past grace, first 30-day block not started

	o := overdueObligation(t, st, "300", dueDate)

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
	obligationRepo.On("FindOverdue", mock.Anything, st.ID, asOf).Return([]billing.Obligation{o}, nil)

	var saved *billing.Obligation
	obligationRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*billing.Obligation)
	}).Return(nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, asOf)
	require.NoError(t, err)
	assert.Zero(t, applied, "no fee money accrues yet")

	require.NotNil(t, saved)
	assert.Equal(t, billing.ObligationStatusOverdue, saved.Status)
	assert.True(t, saved.LateFee.IsZero())
}

func TestApplyLateFeesNoopWithoutPolicy(t *testing.T) {
	st := newTestSite(t, "300") // no late fee policy

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, applied)
	obligationRepo.AssertNotCalled(t, "FindOverdue", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyLateFeesSkipsPartiallyPaid(t *testing.T) {
	st := newLateFeeSite(t, "5", 10)
	asOf := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	o := overdueObligation(t, st, "300", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, o.RefreshPaidTotal(decimal.NewFromInt(100)))
	assert.Equal(t, billing.ObligationStatusPartiallyPaid, o.Status)

	siteRepo := new(mockSiteRepo)
	obligationRepo := new(mockObligationRepo)
	svc := NewLateFeeService(siteRepo, obligationRepo)

	siteRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
	obligationRepo.On("FindOverdue", mock.Anything, st.ID, asOf).Return([]billing.Obligation{o}, nil)

	applied, err := svc.ApplyLateFees(context.Background(), st.ID, asOf)
	require.NoError(t, err)
	assert.Zero(t, applied)
}
