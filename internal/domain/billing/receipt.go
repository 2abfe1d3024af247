package billing

import (
	"fmt"
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is the artifact issued for a payment. Sequence numbers are
// strictly increasing per site; allocation happens inside the payment
// transaction so concurrent payments cannot share a number.
type Receipt struct {
	shared.SiteAggregateRoot
	PaymentID   uuid.UUID
	Sequence    int64
	ReceiptDate time.Time
	Amount      decimal.Decimal
	Description string
	Reversed    bool
}

// NewReceipt creates a receipt for a payment with the given sequence
func NewReceipt(siteID, paymentID uuid.UUID, sequence int64, amount decimal.Decimal, description string) (*Receipt, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if sequence < 1 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Receipt sequence must be positive")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount must be positive")
	}

	return &Receipt{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		PaymentID:         paymentID,
		Sequence:          sequence,
		ReceiptDate:       time.Now(),
		Amount:            amount,
		Description:       description,
	}, nil
}

// Number returns the printable receipt number, e.g. "2025-000042"
func (r *Receipt) Number() string {
	return fmt.Sprintf("%d-%06d", r.ReceiptDate.Year(), r.Sequence)
}

// MarkReversed flags the receipt void after its payment is reversed
func (r *Receipt) MarkReversed() error {
	if r.Reversed {
		return shared.NewDomainError("ALREADY_REVERSED", "Receipt has already been reversed")
	}
	r.Reversed = true
	r.Touch()
	r.IncrementVersion()
	return nil
}
