package banking

import (
	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is a site's bank account. OpeningBalance is the statement
// anchor and changes only through reconciliation; RunningBalance is an
// incrementally maintained cache that must always equal the balance
// replayed from the payment/expense/transfer ledgers.
type BankAccount struct {
	shared.SiteAggregateRoot
	BankName       string
	BranchName     string
	AccountNumber  string
	IBAN           string
	AccountName    string
	Currency       string
	IsDefault      bool
	OpeningBalance decimal.Decimal
	RunningBalance decimal.Decimal
}

// NewBankAccount creates a new account whose running balance starts at
// the opening balance.
func NewBankAccount(siteID uuid.UUID, bankName string, openingBalance decimal.Decimal) (*BankAccount, error) {
	if siteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SITE", "Site ID cannot be empty")
	}
	if bankName == "" {
		return nil, shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}
	return &BankAccount{
		SiteAggregateRoot: shared.NewSiteAggregateRoot(siteID),
		BankName:          bankName,
		Currency:          "TRY",
		OpeningBalance:    openingBalance,
		RunningBalance:    openingBalance,
	}, nil
}

// Credit increases the running balance
func (a *BankAccount) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	a.RunningBalance = a.RunningBalance.Add(amount)
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Debit decreases the running balance. Overdraft is allowed here;
// transfer-level checks decide whether a debit may proceed.
func (a *BankAccount) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	a.RunningBalance = a.RunningBalance.Sub(amount)
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Reconcile anchors the account to a statement balance: the opening
// balance is back-solved by the caller and both stored balances are
// overwritten so a subsequent replay returns exactly the statement.
func (a *BankAccount) Reconcile(openingBalance, statementBalance decimal.Decimal) {
	a.OpeningBalance = openingBalance
	a.RunningBalance = statementBalance
	a.Touch()
	a.IncrementVersion()
}
