package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseTypeRepository defines the interface for expense type persistence
type ExpenseTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseType, error)
	FindBySite(ctx context.Context, siteID uuid.UUID) ([]ExpenseType, error)
	Save(ctx context.Context, t *ExpenseType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseRepository defines the interface for expense persistence.
// "Qualifying" everywhere means: not cancelled and the expense type is
// not flagged ExcludeFromReport.
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindBySite(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]Expense, error)
	// FindDueQualifying returns qualifying expenses of the site whose
	// effective date is on or before asOf. A nil siteID spans all sites.
	FindDueQualifying(ctx context.Context, siteID *uuid.UUID, asOf time.Time) ([]Expense, error)
	// SumQualifyingInRange sums qualifying expense amounts with effective
	// date inside [from, to]; zero bounds open the range.
	SumQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	// FindQualifyingInRange lists qualifying expenses for report detail.
	FindQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]Expense, error)
	Save(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}
