package site

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSite(t *testing.T) *Site {
	s, err := NewSite("Palmiye Sitesi")
	require.NoError(t, err)
	return s
}

func TestNewSite(t *testing.T) {
	t.Run("creates site with defaults", func(t *testing.T) {
		s := newTestSite(t)
		start, end := s.PaymentWindowDays()
		assert.Equal(t, 1, start)
		assert.Equal(t, 20, end)
		assert.Equal(t, "TRY", s.Currency)
		assert.False(t, s.HasLateFeePolicy())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewSite("")
		assert.Error(t, err)
	})
}

func TestSite_PaymentWindowDays(t *testing.T) {
	s := newTestSite(t)
	s.DefaultPaymentStartDay = 5
	s.DefaultPaymentEndDay = 25

	start, end := s.PaymentWindowDays()
	assert.Equal(t, 5, start)
	assert.Equal(t, 25, end)

	// Out-of-range values fall back to defaults
	s.DefaultPaymentStartDay = 0
	s.DefaultPaymentEndDay = 31
	start, end = s.PaymentWindowDays()
	assert.Equal(t, 1, start)
	assert.Equal(t, 20, end)
}

func TestSite_LateFeeFor(t *testing.T) {
	s := newTestSite(t)
	rate := decimal.NewFromInt(5)
	grace := 10
	s.LateFeeRatePercent = &rate
	s.LateFeeGraceDays = &grace

	tests := []struct {
		name     string
		amount   string
		daysLate int
		want     string
	}{
		{"inside grace period", "300", 9, "0"},
		{"under one month late", "300", 29, "0"},
		{"one month late", "300", 35, "15"},
		{"two months late", "300", 65, "30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := s.LateFeeFor(amount, tt.daysLate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
		})
	}

	t.Run("no policy yields zero", func(t *testing.T) {
		bare := newTestSite(t)
		got := bare.LateFeeFor(decimal.NewFromInt(300), 90)
		assert.True(t, got.IsZero())
	})
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, 31, EndOfMonth(2025, 1).Day())
	assert.Equal(t, 28, EndOfMonth(2025, 2).Day())
	assert.Equal(t, 29, EndOfMonth(2024, 2).Day())
	assert.Equal(t, 30, EndOfMonth(2025, 4).Day())
}

func TestClampToMonth(t *testing.T) {
	// Day 30 does not exist in February
	d := ClampToMonth(2025, 2, 30)
	assert.Equal(t, 28, d.Day())

	d = ClampToMonth(2025, 1, 15)
	assert.Equal(t, 15, d.Day())
}

func TestApartment_MonthlyDues(t *testing.T) {
	siteID := uuid.New()
	apt, err := NewApartment(siteID, "A", "12")
	require.NoError(t, err)

	siteDefault := decimal.NewFromInt(300)

	t.Run("uses site default scaled by share rate", func(t *testing.T) {
		assert.True(t, apt.MonthlyDues(&siteDefault).Equal(decimal.NewFromInt(300)))

		apt.ShareRate = decimal.NewFromInt(2)
		assert.True(t, apt.MonthlyDues(&siteDefault).Equal(decimal.NewFromInt(600)))
	})

	t.Run("override wins over site default", func(t *testing.T) {
		override := decimal.NewFromInt(450)
		apt.DuesOverride = &override
		assert.True(t, apt.MonthlyDues(&siteDefault).Equal(override))
	})

	t.Run("nil site default yields zero", func(t *testing.T) {
		apt.DuesOverride = nil
		assert.True(t, apt.MonthlyDues(nil).IsZero())
	})
}

func TestApartment_WindowDays(t *testing.T) {
	s := newTestSite(t)
	s.DefaultPaymentStartDay = 1
	s.DefaultPaymentEndDay = 20

	apt, err := NewApartment(uuid.New(), "B", "3")
	require.NoError(t, err)

	start, end := apt.WindowDays(s)
	assert.Equal(t, 1, start)
	assert.Equal(t, 20, end)

	st, en := 5, 25
	apt.PaymentStartDay = &st
	apt.PaymentEndDay = &en
	start, end = apt.WindowDays(s)
	assert.Equal(t, 5, start)
	assert.Equal(t, 25, end)

	// Out-of-range override falls back to the site value
	bad := 0
	apt.PaymentStartDay = &bad
	start, _ = apt.WindowDays(s)
	assert.Equal(t, 1, start)
}

func TestNewApartment_Validation(t *testing.T) {
	_, err := NewApartment(uuid.Nil, "A", "1")
	assert.Error(t, err)

	_, err = NewApartment(uuid.New(), "A", "")
	assert.Error(t, err)
}
