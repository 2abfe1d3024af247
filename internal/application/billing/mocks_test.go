package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/site"
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

// mockApartmentRepo is a mock implementation of site.ApartmentRepository
type mockApartmentRepo struct {
	mock.Mock
}

func (m *mockApartmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*site.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*site.Apartment), args.Error(1)
}

func (m *mockApartmentRepo) FindBySite(ctx context.Context, siteID uuid.UUID) ([]site.Apartment, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]site.Apartment), args.Error(1)
}

func (m *mockApartmentRepo) TotalShareRate(ctx context.Context, siteID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, siteID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockApartmentRepo) Save(ctx context.Context, a *site.Apartment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockApartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockObligationRepo is a mock implementation of billing.ObligationRepository
type mockObligationRepo struct {
	mock.Mock
}

func (m *mockObligationRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Obligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Obligation), args.Error(1)
}

func (m *mockObligationRepo) FindBySite(ctx context.Context, siteID uuid.UUID, filter billing.ObligationFilter) ([]billing.Obligation, error) {
	args := m.Called(ctx, siteID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Obligation), args.Error(1)
}

func (m *mockObligationRepo) FindByApartment(ctx context.Context, apartmentID uuid.UUID, onlyOutstanding bool) ([]billing.Obligation, error) {
	args := m.Called(ctx, apartmentID, onlyOutstanding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Obligation), args.Error(1)
}

func (m *mockObligationRepo) FindOverdue(ctx context.Context, siteID uuid.UUID, before time.Time) ([]billing.Obligation, error) {
	args := m.Called(ctx, siteID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Obligation), args.Error(1)
}

func (m *mockObligationRepo) ExistsForPeriod(ctx context.Context, siteID, apartmentID uuid.UUID, year, month int, kind billing.ObligationKind) (bool, error) {
	args := m.Called(ctx, siteID, apartmentID, year, month, kind)
	return args.Bool(0), args.Error(1)
}

func (m *mockObligationRepo) Save(ctx context.Context, o *billing.Obligation) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockObligationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
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

// mockReceiptRepo is a mock implementation of billing.ReceiptRepository
type mockReceiptRepo struct {
	mock.Mock
}

func (m *mockReceiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *mockReceiptRepo) NextSequence(ctx context.Context, siteID uuid.UUID) (int64, error) {
	args := m.Called(ctx, siteID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReceiptRepo) Save(ctx context.Context, r *billing.Receipt) error {
	args := m.Called(ctx, r)
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

// fakeTxManager runs the function without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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
