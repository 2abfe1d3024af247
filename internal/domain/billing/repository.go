package billing

import (
	"context"
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationFilter defines filtering options for obligation queries
type ObligationFilter struct {
	shared.Filter
	ApartmentID *uuid.UUID
	Year        *int
	Month       *int
	Kind        *ObligationKind
	Status      *ObligationStatus
}

// ObligationRepository defines the interface for obligation persistence.
// Save relies on a uniqueness constraint over (site, apartment, year,
// month, kind) so that concurrent accrual sweeps cannot double-insert;
// a constraint violation surfaces as shared.ErrAlreadyExists.
type ObligationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Obligation, error)
	FindBySite(ctx context.Context, siteID uuid.UUID, filter ObligationFilter) ([]Obligation, error)
	FindByApartment(ctx context.Context, apartmentID uuid.UUID, onlyOutstanding bool) ([]Obligation, error)
	// FindOverdue returns outstanding obligations with a due date before the given day.
	FindOverdue(ctx context.Context, siteID uuid.UUID, before time.Time) ([]Obligation, error)
	// ExistsForPeriod reports whether the accrual key is already taken.
	ExistsForPeriod(ctx context.Context, siteID, apartmentID uuid.UUID, year, month int, kind ObligationKind) (bool, error)
	Save(ctx context.Context, o *Obligation) error
	// Delete removes an obligation; callers must have verified that no
	// non-reversed payment exists against it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ApartmentID     *uuid.UUID
	From            *time.Time
	To              *time.Time
	IncludeReversed bool
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindBySite(ctx context.Context, siteID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	FindByObligation(ctx context.Context, obligationID uuid.UUID, includeReversed bool) ([]Payment, error)
	// SumActiveByObligation sums non-reversed payment amounts against one obligation.
	SumActiveByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error)
	// SumActiveByObligations sums non-reversed payment amounts per obligation.
	SumActiveByObligations(ctx context.Context, obligationIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// SumActiveByAccount sums non-reversed payment amounts routed to a bank account.
	SumActiveByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	// SumCollectedInRange sums non-reversed obligation-linked payments dated
	// within [from, to] for the site. Either bound may be zero for open ranges.
	SumCollectedInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	Save(ctx context.Context, p *Payment) error
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*Receipt, error)
	// NextSequence allocates the next per-site receipt number. Must be
	// called inside the payment transaction.
	NextSequence(ctx context.Context, siteID uuid.UUID) (int64, error)
	Save(ctx context.Context, r *Receipt) error
}
