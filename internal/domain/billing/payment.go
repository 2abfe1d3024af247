package billing

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment records money received from an apartment, optionally applied
// to one obligation and routed to one bank account. A payment is
// immutable once created except for the reversed flag.
type Payment struct {
	shared.SiteAggregateRoot
	ApartmentID   uuid.UUID
	ObligationID  *uuid.UUID
	BankAccountID *uuid.UUID
	ReceiptID     *uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        PaymentMethod
	Description   string
	Reversed      bool
	ReversedAt    *time.Time
}

// NewPayment creates a new payment record
func NewPayment(
	siteID, apartmentID uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	description string,
) (*Payment, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if apartmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APARTMENT", "Apartment ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}

	return &Payment{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		ApartmentID:       apartmentID,
		Amount:            amount,
		PaymentDate:       paymentDate,
		Method:            method,
		Description:       description,
	}, nil
}

// WithObligation links the payment to the obligation it settles
func (p *Payment) WithObligation(obligationID uuid.UUID) *Payment {
	p.ObligationID = &obligationID
	return p
}

// WithBankAccount routes the payment to a bank account
func (p *Payment) WithBankAccount(accountID uuid.UUID) *Payment {
	p.BankAccountID = &accountID
	return p
}

// IsActive reports whether the payment still counts toward balances
func (p *Payment) IsActive() bool {
	return !p.Reversed
}

// MarkReversed tombstones the payment. Fails if already reversed.
func (p *Payment) MarkReversed() error {
	if p.Reversed {
		return shared.NewDomainError("ALREADY_REVERSED", "Payment has already been reversed")
	}
	now := time.Now()
	p.Reversed = true
	p.ReversedAt = &now
	p.Touch()
	p.IncrementVersion()
	return nil
}
