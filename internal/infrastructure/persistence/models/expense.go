package models

import (
	"time"

	"github.com/condo/backend/internal/domain/expense"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseTypeModel is the persistence model for expense types.
type ExpenseTypeModel struct {
	SiteAggregateModel
	Name              string `gorm:"type:varchar(200);not null"`
	Description       string `gorm:"type:text"`
	ExcludeFromReport bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ExpenseTypeModel) TableName() string {
	return "expense_types"
}

// ToDomain converts the persistence model to a domain ExpenseType
func (m *ExpenseTypeModel) ToDomain() *expense.ExpenseType {
	t := &expense.ExpenseType{
		Name:              m.Name,
		Description:       m.Description,
		ExcludeFromReport: m.ExcludeFromReport,
	}
	m.PopulateSiteAggregateRoot(&t.SiteAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain ExpenseType
func (m *ExpenseTypeModel) FromDomain(t *expense.ExpenseType) {
	m.FromDomainSiteAggregateRoot(t.SiteAggregateRoot)
	m.Name = t.Name
	m.Description = t.Description
	m.ExcludeFromReport = t.ExcludeFromReport
}

// ExpenseModel is the persistence model for expenses. The effective
// date is materialized so range queries need no per-row expression.
type ExpenseModel struct {
	SiteAggregateModel
	ExpenseTypeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description   string          `gorm:"type:text"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExpenseDate   time.Time       `gorm:"not null;index"`
	DueDate       *time.Time      `gorm:""`
	InvoiceNumber string          `gorm:"type:varchar(100)"`
	InvoiceDate   *time.Time      `gorm:""`
	EffectiveDate time.Time       `gorm:"not null;index"`
	Notes         string          `gorm:"type:text"`
	Cancelled     bool            `gorm:"not null;default:false;index"`
	CancelledAt   *time.Time      `gorm:""`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *expense.Expense {
	e := &expense.Expense{
		ExpenseTypeID: m.ExpenseTypeID,
		Description:   m.Description,
		Amount:        m.Amount,
		ExpenseDate:   m.ExpenseDate,
		DueDate:       m.DueDate,
		InvoiceNumber: m.InvoiceNumber,
		InvoiceDate:   m.InvoiceDate,
		Notes:         m.Notes,
		Cancelled:     m.Cancelled,
		CancelledAt:   m.CancelledAt,
	}
	m.PopulateSiteAggregateRoot(&e.SiteAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.FromDomainSiteAggregateRoot(e.SiteAggregateRoot)
	m.ExpenseTypeID = e.ExpenseTypeID
	m.Description = e.Description
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.DueDate = e.DueDate
	m.InvoiceNumber = e.InvoiceNumber
	m.InvoiceDate = e.InvoiceDate
	m.EffectiveDate = e.EffectiveDate()
	m.Notes = e.Notes
	m.Cancelled = e.Cancelled
	m.CancelledAt = e.CancelledAt
}
