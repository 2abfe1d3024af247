package banking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAccount(t *testing.T) *BankAccount {
	a, err := NewBankAccount(uuid.New(), "Ziraat", decimal.NewFromInt(1000))
	require.NoError(t, err)
	return a
}

func TestNewBankAccount(t *testing.T) {
	a := createTestAccount(t)
	assert.True(t, a.RunningBalance.Equal(a.OpeningBalance))
	assert.Equal(t, "TRY", a.Currency)

	_, err := NewBankAccount(uuid.Nil, "X", decimal.Zero)
	assert.Error(t, err)
	_, err = NewBankAccount(uuid.New(), "", decimal.Zero)
	assert.Error(t, err)
}

func TestBankAccount_CreditDebit(t *testing.T) {
	a := createTestAccount(t)

	require.NoError(t, a.Credit(decimal.NewFromInt(300)))
	assert.True(t, a.RunningBalance.Equal(decimal.NewFromInt(1300)))

	require.NoError(t, a.Debit(decimal.NewFromInt(200)))
	assert.True(t, a.RunningBalance.Equal(decimal.NewFromInt(1100)))

	assert.Error(t, a.Credit(decimal.Zero))
	assert.Error(t, a.Debit(decimal.NewFromInt(-5)))
}

func TestBankAccount_Reconcile(t *testing.T) {
	a := createTestAccount(t)
	require.NoError(t, a.Credit(decimal.NewFromInt(300)))

	a.Reconcile(decimal.NewFromInt(700), decimal.NewFromInt(1000))
	assert.True(t, a.OpeningBalance.Equal(decimal.NewFromInt(700)))
	assert.True(t, a.RunningBalance.Equal(decimal.NewFromInt(1000)))
}

func TestBankTransaction_Constructors(t *testing.T) {
	accountID := uuid.New()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("income is positive", func(t *testing.T) {
		tx, err := NewIncomeTransaction(accountID, uuid.New(), date, decimal.NewFromInt(300), "collection", decimal.NewFromInt(1300))
		require.NoError(t, err)
		assert.True(t, tx.Amount.IsPositive())
		assert.Equal(t, TransactionKindIncome, tx.Kind)
		assert.NotNil(t, tx.PaymentID)
	})

	t.Run("expense is stored negative", func(t *testing.T) {
		tx, err := NewExpenseTransaction(accountID, uuid.New(), date, decimal.NewFromInt(200), "electricity", decimal.NewFromInt(1100))
		require.NoError(t, err)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-200)))
		assert.Equal(t, TransactionKindExpense, tx.Kind)
		assert.NotNil(t, tx.ExpenseID)
	})

	t.Run("transfer legs carry sign and counter account", func(t *testing.T) {
		counter := uuid.New()
		out, err := NewTransferTransaction(accountID, counter, date, decimal.NewFromInt(100), true, "to reserve", decimal.NewFromInt(900))
		require.NoError(t, err)
		assert.True(t, out.Amount.Equal(decimal.NewFromInt(-100)))
		assert.Equal(t, &counter, out.CounterAccountID)

		in, err := NewTransferTransaction(counter, accountID, date, decimal.NewFromInt(100), false, "from main", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, in.Amount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewIncomeTransaction(uuid.Nil, uuid.New(), date, decimal.NewFromInt(1), "", decimal.Zero)
		assert.Error(t, err)
		_, err = NewIncomeTransaction(accountID, uuid.New(), date, decimal.Zero, "", decimal.Zero)
		assert.Error(t, err)
		_, err = NewExpenseTransaction(accountID, uuid.New(), date, decimal.NewFromInt(-1), "", decimal.Zero)
		assert.Error(t, err)
		_, err = NewTransferTransaction(accountID, uuid.New(), date, decimal.Zero, true, "", decimal.Zero)
		assert.Error(t, err)
	})
}

func TestBankTransaction_MarkReversed(t *testing.T) {
	tx, err := NewIncomeTransaction(uuid.New(), uuid.New(), time.Now(), decimal.NewFromInt(300), "", decimal.NewFromInt(300))
	require.NoError(t, err)

	assert.True(t, tx.IsActive())
	require.NoError(t, tx.MarkReversed())
	assert.False(t, tx.IsActive())
	assert.Error(t, tx.MarkReversed())
}
