package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/site"
)

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
