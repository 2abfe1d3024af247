package banking

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger line
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "INCOME"   // Payment routed to the account
	TransactionKindExpense  TransactionKind = "EXPENSE"  // Expense deducted from the account
	TransactionKindTransfer TransactionKind = "TRANSFER" // Leg of an inter-account transfer
)

// IsValid checks if the kind is a valid TransactionKind
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindIncome, TransactionKindExpense, TransactionKindTransfer:
		return true
	}
	return false
}

// BankTransaction is a logically append-only ledger line on an account.
// The amount is signed: positive for inflow, negative for outflow.
// Reversal tombstones the row with a flag; the line stays visible in
// statement history.
type BankTransaction struct {
	shared.BaseAggregateRoot
	BankAccountID    uuid.UUID
	TransactionDate  time.Time
	Amount           decimal.Decimal
	Kind             TransactionKind
	Description      string
	ReferenceNumber  string
	PaymentID        *uuid.UUID
	ExpenseID        *uuid.UUID
	CounterAccountID *uuid.UUID
	BalanceAfter     decimal.Decimal
	Reversed         bool
}

func newBankTransaction(accountID uuid.UUID, date time.Time, amount decimal.Decimal, kind TransactionKind, description string, balanceAfter decimal.Decimal) (*BankTransaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Bank account ID cannot be empty")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}
	return &BankTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BankAccountID:     accountID,
		TransactionDate:   date,
		Amount:            amount,
		Kind:              kind,
		Description:       description,
		BalanceAfter:      balanceAfter,
	}, nil
}

// NewIncomeTransaction records a payment inflow on the account
func NewIncomeTransaction(accountID, paymentID uuid.UUID, date time.Time, amount decimal.Decimal, description string, balanceAfter decimal.Decimal) (*BankTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Income amount must be positive")
	}
	tx, err := newBankTransaction(accountID, date, amount, TransactionKindIncome, description, balanceAfter)
	if err != nil {
		return nil, err
	}
	tx.PaymentID = &paymentID
	return tx, nil
}

// NewExpenseTransaction records an expense outflow on the account.
// The stored amount is always negative.
func NewExpenseTransaction(accountID, expenseID uuid.UUID, date time.Time, amount decimal.Decimal, description string, balanceAfter decimal.Decimal) (*BankTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	tx, err := newBankTransaction(accountID, date, amount.Neg(), TransactionKindExpense, description, balanceAfter)
	if err != nil {
		return nil, err
	}
	tx.ExpenseID = &expenseID
	return tx, nil
}

// NewTransferTransaction records one leg of an inter-account transfer.
// outgoing selects the sign; counterAccountID names the other leg's account.
func NewTransferTransaction(accountID, counterAccountID uuid.UUID, date time.Time, amount decimal.Decimal, outgoing bool, description string, balanceAfter decimal.Decimal) (*BankTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
	}
	signed := amount
	if outgoing {
		signed = amount.Neg()
	}
	tx, err := newBankTransaction(accountID, date, signed, TransactionKindTransfer, description, balanceAfter)
	if err != nil {
		return nil, err
	}
	tx.CounterAccountID = &counterAccountID
	return tx, nil
}

// IsActive reports whether the line still counts toward balances
func (t *BankTransaction) IsActive() bool {
	return !t.Reversed
}

// MarkReversed tombstones the ledger line after its payment is reversed
func (t *BankTransaction) MarkReversed() error {
	if t.Reversed {
		return shared.NewDomainError("ALREADY_REVERSED", "Transaction has already been reversed")
	}
	t.Reversed = true
	t.Touch()
	t.IncrementVersion()
	return nil
}
