package site

import (
	"strings"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Apartment represents a single unit inside a site. Its share rate
// weights dues and extra-collection obligations; overrides replace the
// site-level defaults where set.
type Apartment struct {
	shared.SiteAggregateRoot
	Block           string
	Number          string
	Floor           *int
	ShareRate       decimal.Decimal
	DuesOverride    *decimal.Decimal
	PaymentStartDay *int
	PaymentEndDay   *int
	OwnerName       string
	OwnerPhone      string
	OwnerEmail      string
}

// NewApartment creates a new apartment with a full share (rate 1)
func NewApartment(siteID uuid.UUID, block, number string) (*Apartment, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_APARTMENT_NUMBER", "Apartment number cannot be empty")
	}
	return &Apartment{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		Block:             block,
		Number:            number,
		ShareRate:         decimal.NewFromInt(1),
	}, nil
}

// Label returns the display label, e.g. "A Blok 12"
func (a *Apartment) Label() string {
	return strings.TrimSpace(a.Block + " " + a.Number)
}

// MonthlyDues computes the apartment's dues obligation amount: the
// per-apartment override when set, otherwise the site default scaled by
// the share rate. A nil site default yields zero.
func (a *Apartment) MonthlyDues(siteDefault *decimal.Decimal) decimal.Decimal {
	if a.DuesOverride != nil {
		return *a.DuesOverride
	}
	if siteDefault == nil {
		return decimal.Zero
	}
	return siteDefault.Mul(a.ShareRate)
}

// WindowDays returns the apartment's payment-window days, falling back
// to the site-level values for out-of-range or unset overrides.
func (a *Apartment) WindowDays(s *Site) (start, end int) {
	start, end = s.PaymentWindowDays()
	if a.PaymentStartDay != nil && *a.PaymentStartDay >= minWindowDay && *a.PaymentStartDay <= maxWindowDay {
		start = *a.PaymentStartDay
	}
	if a.PaymentEndDay != nil && *a.PaymentEndDay >= minWindowDay && *a.PaymentEndDay <= maxWindowDay {
		end = *a.PaymentEndDay
	}
	return start, end
}
