package site

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// Payment-window days are restricted to 1..28 so every month has them.
	minWindowDay = 1
	maxWindowDay = 28

	defaultPaymentStartDay = 1
	defaultPaymentEndDay   = 20
)

// Site represents a managed condominium/HOA site. It owns the default
// dues configuration and the late-fee policy applied to its apartments.
type Site struct {
	shared.BaseAggregateRoot
	Name                   string
	Address                string
	City                   string
	DefaultMonthlyDues     *decimal.Decimal
	DefaultPaymentStartDay int
	DefaultPaymentEndDay   int
	LateFeeRatePercent     *decimal.Decimal
	LateFeeGraceDays       *int
	ContactEmail           string
	Currency               string
}

// NewSite creates a new site with defaulted payment-window days
func NewSite(name string) (*Site, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SITE_NAME", "Site name cannot be empty")
	}
	return &Site{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Name:                   name,
		DefaultPaymentStartDay: defaultPaymentStartDay,
		DefaultPaymentEndDay:   defaultPaymentEndDay,
		Currency:               "TRY",
	}, nil
}

// PaymentWindowDays returns the site-level window start/end days,
// substituting defaults for out-of-range values.
func (s *Site) PaymentWindowDays() (start, end int) {
	start = defaultPaymentStartDay
	if s.DefaultPaymentStartDay >= minWindowDay && s.DefaultPaymentStartDay <= maxWindowDay {
		start = s.DefaultPaymentStartDay
	}
	end = defaultPaymentEndDay
	if s.DefaultPaymentEndDay >= minWindowDay && s.DefaultPaymentEndDay <= maxWindowDay {
		end = s.DefaultPaymentEndDay
	}
	return start, end
}

// HasLateFeePolicy reports whether late fees are configured for the site
func (s *Site) HasLateFeePolicy() bool {
	return s.LateFeeRatePercent != nil && s.LateFeeGraceDays != nil
}

// LateFeeFor computes the one-time late fee for an obligation amount that
// is daysLate days past due. Returns zero when the policy does not apply.
// The fee grows with each started 30-day block past the due date.
func (s *Site) LateFeeFor(amount decimal.Decimal, daysLate int) decimal.Decimal {
	if !s.HasLateFeePolicy() || daysLate < *s.LateFeeGraceDays {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(daysLate / 30))
	rate := s.LateFeeRatePercent.Div(decimal.NewFromInt(100))
	return amount.Mul(rate).Mul(months).Round(2)
}

// EndOfMonth returns the last day of the given accrual period, which is
// the due date of dues obligations for that period.
func EndOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days in the given period
func DaysInMonth(year, month int) int {
	return EndOfMonth(year, month).Day()
}

// ClampToMonth returns a date in (year, month) on the given day, clamped
// to the last day of the month.
func ClampToMonth(year, month, day int) time.Time {
	if d := DaysInMonth(year, month); day > d {
		day = d
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
