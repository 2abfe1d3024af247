package models

import (
	"time"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for the BankAccount aggregate.
type BankAccountModel struct {
	SiteAggregateModel
	BankName       string          `gorm:"type:varchar(200);not null"`
	BranchName     string          `gorm:"type:varchar(200)"`
	AccountNumber  string          `gorm:"type:varchar(50)"`
	IBAN           string          `gorm:"type:varchar(34)"`
	AccountName    string          `gorm:"type:varchar(200)"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'TRY'"`
	IsDefault      bool            `gorm:"not null;default:false"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RunningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount
func (m *BankAccountModel) ToDomain() *banking.BankAccount {
	a := &banking.BankAccount{
		BankName:       m.BankName,
		BranchName:     m.BranchName,
		AccountNumber:  m.AccountNumber,
		IBAN:           m.IBAN,
		AccountName:    m.AccountName,
		Currency:       m.Currency,
		IsDefault:      m.IsDefault,
		OpeningBalance: m.OpeningBalance,
		RunningBalance: m.RunningBalance,
	}
	m.PopulateSiteAggregateRoot(&a.SiteAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain BankAccount
func (m *BankAccountModel) FromDomain(a *banking.BankAccount) {
	m.FromDomainSiteAggregateRoot(a.SiteAggregateRoot)
	m.BankName = a.BankName
	m.BranchName = a.BranchName
	m.AccountNumber = a.AccountNumber
	m.IBAN = a.IBAN
	m.AccountName = a.AccountName
	m.Currency = a.Currency
	m.IsDefault = a.IsDefault
	m.OpeningBalance = a.OpeningBalance
	m.RunningBalance = a.RunningBalance
}

// BankTransactionModel is the persistence model for ledger lines. The
// reversed flag participates in the per-expense uniqueness guard: the
// migration creates a partial unique index on expense_id where
// reversed is false, so a due expense is deducted at most once.
type BankTransactionModel struct {
	AggregateModel
	BankAccountID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionDate  time.Time       `gorm:"not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Kind             string          `gorm:"type:varchar(20);not null;index"`
	Description      string          `gorm:"type:text"`
	ReferenceNumber  string          `gorm:"type:varchar(100)"`
	PaymentID        *uuid.UUID      `gorm:"type:uuid;index"`
	ExpenseID        *uuid.UUID      `gorm:"type:uuid;index"`
	CounterAccountID *uuid.UUID      `gorm:"type:uuid"`
	BalanceAfter     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Reversed         bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain BankTransaction
func (m *BankTransactionModel) ToDomain() *banking.BankTransaction {
	t := &banking.BankTransaction{
		BankAccountID:    m.BankAccountID,
		TransactionDate:  m.TransactionDate,
		Amount:           m.Amount,
		Kind:             banking.TransactionKind(m.Kind),
		Description:      m.Description,
		ReferenceNumber:  m.ReferenceNumber,
		PaymentID:        m.PaymentID,
		ExpenseID:        m.ExpenseID,
		CounterAccountID: m.CounterAccountID,
		BalanceAfter:     m.BalanceAfter,
		Reversed:         m.Reversed,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain BankTransaction
func (m *BankTransactionModel) FromDomain(t *banking.BankTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.BankAccountID = t.BankAccountID
	m.TransactionDate = t.TransactionDate
	m.Amount = t.Amount
	m.Kind = string(t.Kind)
	m.Description = t.Description
	m.ReferenceNumber = t.ReferenceNumber
	m.PaymentID = t.PaymentID
	m.ExpenseID = t.ExpenseID
	m.CounterAccountID = t.CounterAccountID
	m.BalanceAfter = t.BalanceAfter
	m.Reversed = t.Reversed
}
