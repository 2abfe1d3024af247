package models

import (
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationModel is the persistence model for the Obligation aggregate.
// The composite unique index is the accrual idempotency key: a second
// insert for the same apartment/period/kind fails at the database.
type ObligationModel struct {
	SiteAggregateModel
	ApartmentID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_obligation_period,priority:1"`
	Year        int             `gorm:"not null;uniqueIndex:idx_obligation_period,priority:2"`
	Month       int             `gorm:"not null;uniqueIndex:idx_obligation_period,priority:3"`
	Kind        string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_obligation_period,priority:4"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LateFee     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidToDate  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	DueDate     time.Time       `gorm:"not null;index"`
	WindowStart time.Time       `gorm:"not null"`
	WindowEnd   time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text"`
	CancelledAt *time.Time      `gorm:""`
}

// TableName returns the table name for GORM
func (ObligationModel) TableName() string {
	return "obligations"
}

// ToDomain converts the persistence model to a domain Obligation
func (m *ObligationModel) ToDomain() *billing.Obligation {
	o := &billing.Obligation{
		ApartmentID: m.ApartmentID,
		Year:        m.Year,
		Month:       m.Month,
		Kind:        billing.ObligationKind(m.Kind),
		Amount:      m.Amount,
		LateFee:     m.LateFee,
		PaidToDate:  m.PaidToDate,
		Status:      billing.ObligationStatus(m.Status),
		DueDate:     m.DueDate,
		WindowStart: m.WindowStart,
		WindowEnd:   m.WindowEnd,
		Description: m.Description,
		CancelledAt: m.CancelledAt,
	}
	m.PopulateSiteAggregateRoot(&o.SiteAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Obligation
func (m *ObligationModel) FromDomain(o *billing.Obligation) {
	m.FromDomainSiteAggregateRoot(o.SiteAggregateRoot)
	m.ApartmentID = o.ApartmentID
	m.Year = o.Year
	m.Month = o.Month
	m.Kind = string(o.Kind)
	m.Amount = o.Amount
	m.LateFee = o.LateFee
	m.PaidToDate = o.PaidToDate
	m.Status = string(o.Status)
	m.DueDate = o.DueDate
	m.WindowStart = o.WindowStart
	m.WindowEnd = o.WindowEnd
	m.Description = o.Description
	m.CancelledAt = o.CancelledAt
}

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	SiteAggregateModel
	ApartmentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ObligationID  *uuid.UUID      `gorm:"type:uuid;index"`
	BankAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	ReceiptID     *uuid.UUID      `gorm:"type:uuid"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate   time.Time       `gorm:"not null;index"`
	Method        string          `gorm:"type:varchar(20);not null"`
	Description   string          `gorm:"type:text"`
	Reversed      bool            `gorm:"not null;default:false;index"`
	ReversedAt    *time.Time      `gorm:""`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		ApartmentID:   m.ApartmentID,
		ObligationID:  m.ObligationID,
		BankAccountID: m.BankAccountID,
		ReceiptID:     m.ReceiptID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Method:        billing.PaymentMethod(m.Method),
		Description:   m.Description,
		Reversed:      m.Reversed,
		ReversedAt:    m.ReversedAt,
	}
	m.PopulateSiteAggregateRoot(&p.SiteAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainSiteAggregateRoot(p.SiteAggregateRoot)
	m.ApartmentID = p.ApartmentID
	m.ObligationID = p.ObligationID
	m.BankAccountID = p.BankAccountID
	m.ReceiptID = p.ReceiptID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = string(p.Method)
	m.Description = p.Description
	m.Reversed = p.Reversed
	m.ReversedAt = p.ReversedAt
}

// ReceiptModel is the persistence model for the Receipt aggregate.
type ReceiptModel struct {
	SiteAggregateModel
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Sequence    int64           `gorm:"not null"`
	ReceiptDate time.Time       `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description string          `gorm:"type:text"`
	Reversed    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	r := &billing.Receipt{
		PaymentID:   m.PaymentID,
		Sequence:    m.Sequence,
		ReceiptDate: m.ReceiptDate,
		Amount:      m.Amount,
		Description: m.Description,
		Reversed:    m.Reversed,
	}
	m.PopulateSiteAggregateRoot(&r.SiteAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Receipt
func (m *ReceiptModel) FromDomain(r *billing.Receipt) {
	m.FromDomainSiteAggregateRoot(r.SiteAggregateRoot)
	m.PaymentID = r.PaymentID
	m.Sequence = r.Sequence
	m.ReceiptDate = r.ReceiptDate
	m.Amount = r.Amount
	m.Description = r.Description
	m.Reversed = r.Reversed
}

// ReceiptCounterModel holds the per-site receipt sequence. The row is
// locked for update inside the payment transaction so two concurrent
// payments cannot allocate the same number.
type ReceiptCounterModel struct {
	SiteID    uuid.UUID `gorm:"type:uuid;primary_key"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptCounterModel) TableName() string {
	return "receipt_counters"
}
