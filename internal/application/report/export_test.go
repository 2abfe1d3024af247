package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/condo/backend/internal/domain/billing"
)

func sampleDetail() *MonthlyReportDetail {
	return &MonthlyReportDetail{
		MonthlyReport: MonthlyReport{
			SiteID:         uuid.New(),
			Year:           2025,
			Month:          3,
			OpeningBalance: decimal.NewFromInt(3500),
			Collected:      decimal.NewFromInt(900),
			PendingAmount:  decimal.NewFromInt(150),
			ExpenseTotal:   decimal.NewFromInt(400),
			Balance:        decimal.NewFromInt(4000),
		},
		Obligations: []ObligationLine{
			{
				ObligationID:   uuid.New(),
				ApartmentID:    uuid.New(),
				ApartmentLabel: "A 12",
				Kind:           billing.ObligationKindDues,
				Amount:         decimal.NewFromInt(300),
				LateFee:        decimal.Zero,
				PaidToDate:     decimal.NewFromInt(150),
				Status:         billing.ObligationStatusPartiallyPaid,
				DueDate:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			},
		},
		Expenses: []ExpenseLine{
			{
				ExpenseID:     uuid.New(),
				TypeName:      "Electricity",
				Description:   "February bill",
				Amount:        decimal.NewFromInt(400),
				EffectiveDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
				InvoiceNumber: "INV-042",
			},
		},
	}
}

func TestBuildMonthlyReportXLSXMatchesDetail(t *testing.T) {
	detail := sampleDetail()

	data, err := BuildMonthlyReportXLSX("Palm Residences", detail)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	collected, err := f.GetCellValue("summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "900.00", collected)

	closing, err := f.GetCellValue("summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "4000.00", closing)

	apartment, err := f.GetCellValue("obligations", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A 12", apartment)

	expenseAmount, err := f.GetCellValue("expenses", "C2")
	require.NoError(t, err)
	assert.Equal(t, "400.00", expenseAmount)
}

func TestBuildMonthlyReportPDF(t *testing.T) {
	data, err := BuildMonthlyReportPDF("Palm Residences", sampleDetail())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildReceiptPDF(t *testing.T) {
	receipt, err := billing.NewReceipt(uuid.New(), uuid.New(), 42, decimal.NewFromInt(300), "Dues 2025-03")
	require.NoError(t, err)

	data, err := BuildReceiptPDF("Palm Residences", "A 12", receipt)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
