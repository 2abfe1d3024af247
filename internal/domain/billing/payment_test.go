package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPayment(t *testing.T) *Payment {
	p, err := NewPayment(
		uuid.New(), uuid.New(),
		decimal.NewFromInt(150),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethodBankTransfer,
		"dues collection",
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment_Validation(t *testing.T) {
	date := time.Now()

	_, err := NewPayment(uuid.Nil, uuid.New(), decimal.NewFromInt(10), date, PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewPayment(uuid.New(), uuid.Nil, decimal.NewFromInt(10), date, PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewPayment(uuid.New(), uuid.New(), decimal.Zero, date, PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(-10), date, PaymentMethodCash, "")
	assert.Error(t, err)

	_, err = NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(10), date, PaymentMethod("WIRE"), "")
	assert.Error(t, err)
}

func TestPayment_Links(t *testing.T) {
	p := createTestPayment(t)
	obligationID := uuid.New()
	accountID := uuid.New()

	p.WithObligation(obligationID).WithBankAccount(accountID)

	require.NotNil(t, p.ObligationID)
	require.NotNil(t, p.BankAccountID)
	assert.Equal(t, obligationID, *p.ObligationID)
	assert.Equal(t, accountID, *p.BankAccountID)
}

func TestPayment_MarkReversed(t *testing.T) {
	p := createTestPayment(t)
	assert.True(t, p.IsActive())

	require.NoError(t, p.MarkReversed())
	assert.False(t, p.IsActive())
	assert.NotNil(t, p.ReversedAt)

	err := p.MarkReversed()
	assert.Error(t, err, "double reversal must be rejected")
}

func TestReceipt(t *testing.T) {
	t.Run("sequence and number", func(t *testing.T) {
		r, err := NewReceipt(uuid.New(), uuid.New(), 42, decimal.NewFromInt(300), "collection")
		require.NoError(t, err)
		assert.Contains(t, r.Number(), "-000042")
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewReceipt(uuid.Nil, uuid.New(), 1, decimal.NewFromInt(1), "")
		assert.Error(t, err)
		_, err = NewReceipt(uuid.New(), uuid.Nil, 1, decimal.NewFromInt(1), "")
		assert.Error(t, err)
		_, err = NewReceipt(uuid.New(), uuid.New(), 0, decimal.NewFromInt(1), "")
		assert.Error(t, err)
		_, err = NewReceipt(uuid.New(), uuid.New(), 1, decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("reversal", func(t *testing.T) {
		r, err := NewReceipt(uuid.New(), uuid.New(), 1, decimal.NewFromInt(300), "")
		require.NoError(t, err)
		require.NoError(t, r.MarkReversed())
		assert.Error(t, r.MarkReversed())
	})
}
