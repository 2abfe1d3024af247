package billing

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationKind discriminates what an apartment owes the site for
type ObligationKind string

const (
	ObligationKindDues            ObligationKind = "DUES"             // Periodic dues, share-rate weighted
	ObligationKindExtraCollection ObligationKind = "EXTRA_COLLECTION" // One-off pro-rata collection
	ObligationKindOther           ObligationKind = "OTHER"            // Manually entered charge
	ObligationKindLegacyShare     ObligationKind = "LEGACY_SHARE"     // Imported per-expense share
)

// IsValid checks if the kind is a valid ObligationKind
func (k ObligationKind) IsValid() bool {
	switch k {
	case ObligationKindDues, ObligationKindExtraCollection, ObligationKindOther, ObligationKindLegacyShare:
		return true
	}
	return false
}

// String returns the string representation of ObligationKind
func (k ObligationKind) String() string {
	return string(k)
}

// ObligationStatus represents the payment state of an obligation
type ObligationStatus string

const (
	ObligationStatusUnpaid        ObligationStatus = "UNPAID"
	ObligationStatusPartiallyPaid ObligationStatus = "PARTIALLY_PAID"
	ObligationStatusPaid          ObligationStatus = "PAID"
	ObligationStatusOverdue       ObligationStatus = "OVERDUE"
	ObligationStatusCancelled     ObligationStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ObligationStatus
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusUnpaid, ObligationStatusPartiallyPaid, ObligationStatusPaid,
		ObligationStatusOverdue, ObligationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ObligationStatus
func (s ObligationStatus) String() string {
	return string(s)
}

// IsOutstanding reports whether the obligation still accepts payments
func (s ObligationStatus) IsOutstanding() bool {
	return s == ObligationStatusUnpaid || s == ObligationStatusPartiallyPaid || s == ObligationStatusOverdue
}

// Obligation is an accrued amount owed by an apartment for a period.
// It is created by the accrual engine, its paid amount and status are
// mutated only through RefreshPaidTotal (driven by the payment set) and
// its late fee only through AddLateFee. A paid obligation is never
// deleted; cancellation requires no money collected against it.
type Obligation struct {
	shared.SiteAggregateRoot
	ApartmentID uuid.UUID
	Year        int
	Month       int
	Kind        ObligationKind
	Amount      decimal.Decimal
	LateFee     decimal.Decimal
	PaidToDate  decimal.Decimal
	Status      ObligationStatus
	DueDate     time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	Description string
	CancelledAt *time.Time
}

// NewObligation creates a new unpaid obligation for an apartment/period
func NewObligation(
	siteID, apartmentID uuid.UUID,
	year, month int,
	kind ObligationKind,
	amount decimal.Decimal,
	dueDate, windowStart, windowEnd time.Time,
	description string,
) (*Obligation, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if apartmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APARTMENT", "Apartment ID cannot be empty")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Obligation kind is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Obligation amount must be positive")
	}

	return &Obligation{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		ApartmentID:       apartmentID,
		Year:              year,
		Month:             month,
		Kind:              kind,
		Amount:            amount,
		LateFee:           decimal.Zero,
		PaidToDate:        decimal.Zero,
		Status:            ObligationStatusUnpaid,
		DueDate:           dueDate,
		WindowStart:       windowStart,
		WindowEnd:         windowEnd,
		Description:       description,
	}, nil
}

// TotalDue returns amount plus accrued late fee
func (o *Obligation) TotalDue() decimal.Decimal {
	return o.Amount.Add(o.LateFee)
}

// Remaining returns the outstanding balance
func (o *Obligation) Remaining() decimal.Decimal {
	return o.TotalDue().Sub(o.PaidToDate)
}

// RefreshPaidTotal sets the paid amount from the sum of all non-reversed
// payments linked to the obligation and recomputes the status. The status
// is always a pure function of that sum, never decremented in place, so
// payment reversal cannot drift it. The overdue flag survives as long as
// nothing has been collected and a late fee was applied.
func (o *Obligation) RefreshPaidTotal(paid decimal.Decimal) error {
	if o.Status == ObligationStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payments to a cancelled obligation")
	}
	if paid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid total cannot be negative")
	}

	o.PaidToDate = paid
	switch {
	case paid.GreaterThanOrEqual(o.TotalDue()):
		o.Status = ObligationStatusPaid
	case paid.IsPositive():
		o.Status = ObligationStatusPartiallyPaid
	case o.LateFee.IsPositive():
		o.Status = ObligationStatusOverdue
	default:
		o.Status = ObligationStatusUnpaid
	}

	o.Touch()
	o.IncrementVersion()
	return nil
}

// AddLateFee accrues a late fee once and flags the obligation overdue.
// A second application is rejected until the fee is cleared.
func (o *Obligation) AddLateFee(fee decimal.Decimal) error {
	if !o.Status.IsOutstanding() {
		return shared.NewDomainError("INVALID_STATE", "Late fees apply only to outstanding obligations")
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee must be positive")
	}
	if o.LateFee.IsPositive() {
		return shared.NewDomainError("LATE_FEE_EXISTS", "Late fee already accrued for this obligation")
	}

	o.LateFee = o.LateFee.Add(fee)
	if !o.PaidToDate.IsPositive() {
		o.Status = ObligationStatusOverdue
	} else if o.PaidToDate.LessThan(o.TotalDue()) {
		o.Status = ObligationStatusPartiallyPaid
	}
	o.Touch()
	o.IncrementVersion()
	return nil
}

// MarkOverdue flags an unpaid obligation overdue while no fee has
// accrued yet: the grace period may pass before the first fee block
// starts. Already-overdue obligations are a no-op; anything with a
// collected amount keeps its payment-derived status.
func (o *Obligation) MarkOverdue() error {
	if o.Status == ObligationStatusOverdue {
		return nil
	}
	if o.Status != ObligationStatusUnpaid || o.PaidToDate.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Only unpaid obligations can become overdue")
	}
	o.Status = ObligationStatusOverdue
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Cancel cancels the obligation. Rejected once any amount is collected.
func (o *Obligation) Cancel() error {
	if o.PaidToDate.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an obligation with collected payments")
	}
	if o.Status == ObligationStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Obligation is already cancelled")
	}
	now := time.Now()
	o.Status = ObligationStatusCancelled
	o.CancelledAt = &now
	o.Touch()
	o.IncrementVersion()
	return nil
}

// IsOverdueAt reports whether the due date passed before the given day
func (o *Obligation) IsOverdueAt(day time.Time) bool {
	return o.Status.IsOutstanding() && o.DueDate.Before(day)
}
