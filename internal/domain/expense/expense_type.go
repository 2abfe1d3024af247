package expense

import (
	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseType classifies expenses of a site (electricity, water,
// elevator maintenance, ...). ExcludeFromReport marks dues-like types
// whose expenses are bookkeeping artifacts, never real cash outflow:
// they are skipped by bank deduction and by every report total.
type ExpenseType struct {
	shared.SiteAggregateRoot
	Name              string
	Description       string
	ExcludeFromReport bool
}

// NewExpenseType creates a new expense type
func NewExpenseType(siteID uuid.UUID, name string) (*ExpenseType, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TYPE_NAME", "Expense type name cannot be empty")
	}
	return &ExpenseType{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		Name:              name,
	}, nil
}
