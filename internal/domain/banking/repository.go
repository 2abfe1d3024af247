package banking

import (
	"context"
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	FindBySite(ctx context.Context, siteID uuid.UUID) ([]BankAccount, error)
	// FindDefaultForSite returns the account expenses are paid from: the
	// one flagged default, else the first by bank name.
	FindDefaultForSite(ctx context.Context, siteID uuid.UUID) (*BankAccount, error)
	Save(ctx context.Context, a *BankAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionFilter defines filtering options for ledger queries
type TransactionFilter struct {
	shared.Filter
	Kind            *TransactionKind
	From            *time.Time
	To              *time.Time
	IncludeReversed bool
}

// BankTransactionRepository defines the interface for ledger persistence.
// SaveForExpense relies on a partial uniqueness constraint (one
// non-reversed transaction per expense) so concurrent deduction sweeps
// cannot double-deduct; a violation surfaces as shared.ErrAlreadyExists.
type BankTransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankTransaction, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]BankTransaction, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) (int64, error)
	FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) (*BankTransaction, error)
	// ExistsActiveForExpense reports whether the expense was already deducted.
	ExistsActiveForExpense(ctx context.Context, expenseID uuid.UUID) (bool, error)
	// SumActiveTransfers nets the signed transfer legs touching the account.
	SumActiveTransfers(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, t *BankTransaction) error
}
