package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankAccountRepository_FindDefaultForSite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankAccountRepository(db)
	ctx := context.Background()

	siteID := uuid.New()

	ziraat, err := banking.NewBankAccount(siteID, "Ziraat", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, ziraat))

	akbank, err := banking.NewBankAccount(siteID, "Akbank", decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, akbank))

	// No default flag set: first by bank name wins.
	got, err := repo.FindDefaultForSite(ctx, siteID)
	require.NoError(t, err)
	assert.Equal(t, "Akbank", got.BankName)

	ziraat.IsDefault = true
	require.NoError(t, repo.Save(ctx, ziraat))

	got, err = repo.FindDefaultForSite(ctx, siteID)
	require.NoError(t, err)
	assert.Equal(t, "Ziraat", got.BankName)
}

func TestBankAccountRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankAccountRepository(db)

	_, err := repo.FindDefaultForSite(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBankTransactionRepository_SaveAndFindByAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankTransactionRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	income, err := banking.NewIncomeTransaction(accountID, uuid.New(), day,
		decimal.NewFromInt(150), "dues", decimal.NewFromInt(1150))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, income))

	out, err := banking.NewExpenseTransaction(accountID, uuid.New(), day,
		decimal.NewFromInt(80), "electricity", decimal.NewFromInt(1070))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, out))

	lines, err := repo.FindByAccount(ctx, accountID, banking.TransactionFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	kind := banking.TransactionKindExpense
	expenses, err := repo.FindByAccount(ctx, accountID, banking.TransactionFilter{
		Filter: shared.DefaultFilter(),
		Kind:   &kind,
	})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	// Expense lines carry a negative signed amount.
	assert.True(t, expenses[0].Amount.Equal(decimal.NewFromInt(-80)))

	count, err := repo.CountByAccount(ctx, accountID, banking.TransactionFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBankTransactionRepository_ExistsActiveForExpense(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankTransactionRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	expenseID := uuid.New()
	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	exists, err := repo.ExistsActiveForExpense(ctx, expenseID)
	require.NoError(t, err)
	assert.False(t, exists)

	line, err := banking.NewExpenseTransaction(accountID, expenseID, day,
		decimal.NewFromInt(80), "electricity", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, line))

	exists, err = repo.ExistsActiveForExpense(ctx, expenseID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Reversing the line makes the expense deductible again.
	require.NoError(t, line.MarkReversed())
	require.NoError(t, repo.Save(ctx, line))

	exists, err = repo.ExistsActiveForExpense(ctx, expenseID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBankTransactionRepository_FindActiveByPayment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankTransactionRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	paymentID := uuid.New()
	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	line, err := banking.NewIncomeTransaction(accountID, paymentID, day,
		decimal.NewFromInt(150), "dues", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, line))

	found, err := repo.FindActiveByPayment(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, line.ID, found.ID)

	require.NoError(t, found.MarkReversed())
	require.NoError(t, repo.Save(ctx, found))

	_, err = repo.FindActiveByPayment(ctx, paymentID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBankTransactionRepository_SumActiveTransfers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBankTransactionRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	counterID := uuid.New()
	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	outgoing, err := banking.NewTransferTransaction(accountID, counterID, day,
		decimal.NewFromInt(200), true, "to reserve account", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, outgoing))

	incoming, err := banking.NewTransferTransaction(accountID, counterID, day,
		decimal.NewFromInt(50), false, "from reserve account", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, incoming))

	net, err := repo.SumActiveTransfers(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, net.Equal(decimal.NewFromInt(-150)), "got %s", net)
}
