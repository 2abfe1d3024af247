package expense

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is an outflow accrued against a site. Its effective date is
// the invoice date when present, else the expense date; deduction and
// reporting both key off the effective date.
type Expense struct {
	shared.SiteAggregateRoot
	ExpenseTypeID uuid.UUID
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	DueDate       *time.Time
	InvoiceNumber string
	InvoiceDate   *time.Time
	Notes         string
	Cancelled     bool
	CancelledAt   *time.Time
}

// NewExpense creates a new expense record
func NewExpense(siteID, expenseTypeID uuid.UUID, description string, amount decimal.Decimal, expenseDate time.Time) (*Expense, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if expenseTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EXPENSE_TYPE", "Expense type ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	return &Expense{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		ExpenseTypeID:     expenseTypeID,
		Description:       description,
		Amount:            amount,
		ExpenseDate:       expenseDate,
	}, nil
}

// EffectiveDate returns the invoice date when set, else the expense date
func (e *Expense) EffectiveDate() time.Time {
	if e.InvoiceDate != nil {
		return *e.InvoiceDate
	}
	return e.ExpenseDate
}

// IsDueAt reports whether the expense should have been deducted by the given day
func (e *Expense) IsDueAt(day time.Time) bool {
	return !e.Cancelled && !e.EffectiveDate().After(day)
}

// Cancel marks the expense cancelled; cancelled expenses never qualify
// as cash outflow again.
func (e *Expense) Cancel() error {
	if e.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Expense is already cancelled")
	}
	now := time.Now()
	e.Cancelled = true
	e.CancelledAt = &now
	e.Touch()
	e.IncrementVersion()
	return nil
}
