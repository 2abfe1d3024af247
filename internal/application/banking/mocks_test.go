package banking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/notification"
)

// mockSiteRepo is a mock implementation of site.SiteRepository
type mockSiteRepo struct {
	mock.Mock
}

func (m *mockSiteRepo) FindByID(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*site.Site), args.Error(1)
}

func (m *mockSiteRepo) FindAll(ctx context.Context) ([]site.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]site.Site), args.Error(1)
}

func (m *mockSiteRepo) Save(ctx context.Context, s *site.Site) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockAccountRepo is a mock implementation of banking.BankAccountRepository
type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankAccount), args.Error(1)
}

func (m *mockAccountRepo) FindBySite(ctx context.Context, siteID uuid.UUID) ([]banking.BankAccount, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]banking.BankAccount), args.Error(1)
}

func (m *mockAccountRepo) FindDefaultForSite(ctx context.Context, siteID uuid.UUID) (*banking.BankAccount, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankAccount), args.Error(1)
}

func (m *mockAccountRepo) Save(ctx context.Context, a *banking.BankAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockLedgerRepo is a mock implementation of banking.BankTransactionRepository
type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankTransaction), args.Error(1)
}

func (m *mockLedgerRepo) FindByAccount(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) ([]banking.BankTransaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]banking.BankTransaction), args.Error(1)
}

func (m *mockLedgerRepo) CountByAccount(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) (int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerRepo) FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) (*banking.BankTransaction, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankTransaction), args.Error(1)
}

func (m *mockLedgerRepo) ExistsActiveForExpense(ctx context.Context, expenseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, expenseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedgerRepo) SumActiveTransfers(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLedgerRepo) Save(ctx context.Context, t *banking.BankTransaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// mockPaymentRepo is a mock implementation of billing.PaymentRepository
type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindBySite(ctx context.Context, siteID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, siteID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindByObligation(ctx context.Context, obligationID uuid.UUID, includeReversed bool) ([]billing.Payment, error) {
	args := m.Called(ctx, obligationID, includeReversed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *mockPaymentRepo) SumActiveByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, obligationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) SumActiveByObligations(ctx context.Context, obligationIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, obligationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) SumActiveByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) SumCollectedInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) Save(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// mockExpenseRepo is a mock implementation of expense.ExpenseRepository
type mockExpenseRepo struct {
	mock.Mock
}

func (m *mockExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *mockExpenseRepo) FindBySite(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	args := m.Called(ctx, siteID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *mockExpenseRepo) FindDueQualifying(ctx context.Context, siteID *uuid.UUID, asOf time.Time) ([]expense.Expense, error) {
	args := m.Called(ctx, siteID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *mockExpenseRepo) SumQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockExpenseRepo) FindQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	args := m.Called(ctx, siteID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *mockExpenseRepo) Save(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeTxManager runs the function without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingNotifier captures notified messages
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// mockExpenseTypeRepo is a mock implementation of expense.ExpenseTypeRepository
type mockExpenseTypeRepo struct {
	mock.Mock
}

func (m *mockExpenseTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ExpenseType), args.Error(1)
}

func (m *mockExpenseTypeRepo) FindBySite(ctx context.Context, siteID uuid.UUID) ([]expense.ExpenseType, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.ExpenseType), args.Error(1)
}

func (m *mockExpenseTypeRepo) Save(ctx context.Context, t *expense.ExpenseType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockExpenseTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingInvalidator records snapshot invalidation calls
type recordingInvalidator struct {
	calls []invalidation
}

type invalidation struct {
	SiteID uuid.UUID
	Year   int
	Month  int
}

func (r *recordingInvalidator) InvalidateFrom(_ context.Context, siteID uuid.UUID, year, month int) error {
	r.calls = append(r.calls, invalidation{SiteID: siteID, Year: year, Month: month})
	return nil
}
