package banking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// BalanceInvalidator drops cached closing-balance snapshots of a site
// from the given period onward.
type BalanceInvalidator interface {
	InvalidateFrom(ctx context.Context, siteID uuid.UUID, year, month int) error
}

// ExpenseService creates and cancels expenses. A qualifying expense
// whose effective date has already passed is deducted from the default
// bank account immediately on creation, under the same at-most-once
// rule the periodic sweep uses.
type ExpenseService struct {
	expenseRepo expense.ExpenseRepository
	typeRepo    expense.ExpenseTypeRepository
	ledgerRepo  ledgerReader
	reconciler  *ReconcilerService
	invalidator BalanceInvalidator
}

// ledgerReader is the slice of the transaction repository the expense
// service needs for its cancel guard.
type ledgerReader interface {
	ExistsActiveForExpense(ctx context.Context, expenseID uuid.UUID) (bool, error)
}

// NewExpenseService creates a new ExpenseService. invalidator may be
// nil when no snapshot cache is deployed.
func NewExpenseService(
	expenseRepo expense.ExpenseRepository,
	typeRepo expense.ExpenseTypeRepository,
	ledgerRepo ledgerReader,
	reconciler *ReconcilerService,
	invalidator BalanceInvalidator,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		typeRepo:    typeRepo,
		ledgerRepo:  ledgerRepo,
		reconciler:  reconciler,
		invalidator: invalidator,
	}
}

// CreateExpenseRequest describes an expense being recorded
type CreateExpenseRequest struct {
	SiteID        uuid.UUID
	ExpenseTypeID uuid.UUID
	Description   string
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	DueDate       *time.Time
	InvoiceNumber string
	InvoiceDate   *time.Time
	Notes         string
}

// CreateExpense records an expense. When the expense qualifies as cash
// outflow and its effective date is already due, the deduction from the
// default bank account is posted right away instead of waiting for the
// next sweep; the site contact is notified the same way.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*expense.Expense, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "create_expense")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, req.SiteID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	expenseType, err := s.typeRepo.FindByID(ctx, req.ExpenseTypeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load expense type: %w", err)
	}
	if expenseType.SiteID != req.SiteID {
		err := shared.NewDomainError("SITE_MISMATCH", "Expense type belongs to a different site")
		telemetry.RecordError(span, err)
		return nil, err
	}

	e, err := expense.NewExpense(req.SiteID, req.ExpenseTypeID, req.Description, req.Amount, req.ExpenseDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	e.DueDate = req.DueDate
	e.InvoiceNumber = req.InvoiceNumber
	e.InvoiceDate = req.InvoiceDate
	e.Notes = req.Notes

	if err := s.expenseRepo.Save(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	if !expenseType.ExcludeFromReport && e.IsDueAt(time.Now()) {
		if err := s.reconciler.deductExpense(ctx, e); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			telemetry.RecordError(span, err)
			return nil, err
		} else if err == nil {
			s.reconciler.notifyDeduction(ctx, e)
		}
	}

	s.invalidateBalances(ctx, e)

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, e.ID.String())
	telemetry.SetOK(span)
	return e, nil
}

// CancelExpense cancels an expense that has not been deducted yet. An
// expense with an active bank deduction must have the deduction
// reversed through the bank side first.
func (s *ExpenseService) CancelExpense(ctx context.Context, expenseID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "cancel_expense")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, expenseID.String())

	e, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to load expense: %w", err)
	}

	deducted, err := s.ledgerRepo.ExistsActiveForExpense(ctx, expenseID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to check deduction: %w", err)
	}
	if deducted {
		err := shared.NewDomainError("INVALID_STATE", "Cannot cancel an expense with an active bank deduction")
		telemetry.RecordError(span, err)
		return err
	}

	if err := e.Cancel(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.expenseRepo.Save(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save expense: %w", err)
	}

	s.invalidateBalances(ctx, e)

	telemetry.SetOK(span)
	return nil
}

// invalidateBalances drops cached report balances from the expense's
// effective month onward. Failures only cost the report fast path.
func (s *ExpenseService) invalidateBalances(ctx context.Context, e *expense.Expense) {
	if s.invalidator == nil {
		return
	}
	effective := e.EffectiveDate()
	_ = s.invalidator.InvalidateFrom(ctx, e.SiteID, effective.Year(), int(effective.Month()))
}
