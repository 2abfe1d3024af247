package banking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/notification"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// ReconcilerService owns the bank side of the ledger: the replayed
// effective balance, due-expense deduction, inter-account transfers and
// statement reconciliation. The replayed balance is the source of truth;
// the running balance on the account row is a cache that must match it
// whenever all due expenses have been deducted.
type ReconcilerService struct {
	siteRepo    site.SiteRepository
	accountRepo banking.BankAccountRepository
	ledgerRepo  banking.BankTransactionRepository
	paymentRepo billing.PaymentRepository
	expenseRepo expense.ExpenseRepository
	txManager   shared.TransactionManager
	notifier    notification.Notifier
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(
	siteRepo site.SiteRepository,
	accountRepo banking.BankAccountRepository,
	ledgerRepo banking.BankTransactionRepository,
	paymentRepo billing.PaymentRepository,
	expenseRepo expense.ExpenseRepository,
	txManager shared.TransactionManager,
	notifier notification.Notifier,
) *ReconcilerService {
	return &ReconcilerService{
		siteRepo:    siteRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		txManager:   txManager,
		notifier:    notifier,
	}
}

// EffectiveBalance replays the account balance from the source ledgers:
// opening balance, plus non-reversed payments routed to the account,
// minus the site's qualifying expenses when the account is the default
// one, plus net signed transfers.
func (s *ReconcilerService) EffectiveBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "effective_balance")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, fmt.Errorf("failed to load bank account: %w", err)
	}

	balance, err := s.replayBalance(ctx, account)
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, err
	}

	telemetry.SetOK(span)
	return balance, nil
}

// replayBalance computes the effective balance for a loaded account
func (s *ReconcilerService) replayBalance(ctx context.Context, account *banking.BankAccount) (decimal.Decimal, error) {
	payments, expenses, transfers, err := s.ledgerComponents(ctx, account, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	return account.OpeningBalance.Add(payments).Sub(expenses).Add(transfers), nil
}

// ledgerComponents returns the three replayed sums for an account.
// Expenses are charged only to the site's default account, and only up
// to asOf: a future-dated expense is not due yet, so the running
// balance has not been debited for it either.
func (s *ReconcilerService) ledgerComponents(ctx context.Context, account *banking.BankAccount, asOf time.Time) (payments, expenses, transfers decimal.Decimal, err error) {
	payments, err = s.paymentRepo.SumActiveByAccount(ctx, account.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	expenses = decimal.Zero
	if account.IsDefault {
		expenses, err = s.expenseRepo.SumQualifyingInRange(ctx, account.SiteID, time.Time{}, asOf)
		if err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
		}
	}

	transfers, err = s.ledgerRepo.SumActiveTransfers(ctx, account.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum transfers: %w", err)
	}
	return payments, expenses, transfers, nil
}

// VerifyRunningBalance cross-checks the cached running balance against
// the replayed effective balance. A divergence is a data-integrity
// fault, reported as shared.ErrBalanceMismatch and never auto-corrected.
func (s *ReconcilerService) VerifyRunningBalance(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load bank account: %w", err)
	}
	effective, err := s.replayBalance(ctx, account)
	if err != nil {
		return err
	}
	if !account.RunningBalance.Equal(effective) {
		return fmt.Errorf("account %s: cached %s vs replayed %s: %w",
			accountID, account.RunningBalance, effective, shared.ErrBalanceMismatch)
	}
	return nil
}

// AutoDeductDueExpenses posts a deduction for every qualifying expense
// whose effective date has passed and that has no active deduction yet.
// Each expense commits in its own transaction; the partial unique index
// on the ledger makes the deduction at-most-once even under concurrent
// sweeps, with the losing insert treated as a benign no-op. Returns the
// number of expenses deducted.
func (s *ReconcilerService) AutoDeductDueExpenses(ctx context.Context, asOf time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "auto_deduct_due_expenses")
	defer span.End()

	due, err := s.expenseRepo.FindDueQualifying(ctx, nil, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to list due expenses: %w", err)
	}

	deducted := 0
	for i := range due {
		e := &due[i]

		exists, err := s.ledgerRepo.ExistsActiveForExpense(ctx, e.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return deducted, fmt.Errorf("failed to check deduction: %w", err)
		}
		if exists {
			continue
		}

		if err := s.deductExpense(ctx, e); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			telemetry.RecordError(span, err)
			return deducted, err
		}
		deducted++

		s.notifyDeduction(ctx, e)
	}

	telemetry.SetAttribute(span, "expenses_deducted", deducted)
	telemetry.SetOK(span)
	return deducted, nil
}

// deductExpense posts one deduction against the site's default account
func (s *ReconcilerService) deductExpense(ctx context.Context, e *expense.Expense) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindDefaultForSite(ctx, e.SiteID)
		if err != nil {
			return fmt.Errorf("failed to load default account for site %s: %w", e.SiteID, err)
		}

		if err := account.Debit(e.Amount); err != nil {
			return err
		}

		line, err := banking.NewExpenseTransaction(
			account.ID, e.ID,
			e.EffectiveDate(), e.Amount,
			e.Description,
			account.RunningBalance,
		)
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.Save(ctx, line); err != nil {
			return fmt.Errorf("failed to save deduction: %w", err)
		}
		return s.accountRepo.Save(ctx, account)
	})
}

// notifyDeduction mails the site contact about the deduction, best effort
func (s *ReconcilerService) notifyDeduction(ctx context.Context, e *expense.Expense) {
	st, err := s.siteRepo.FindByID(ctx, e.SiteID)
	if err != nil || st.ContactEmail == "" {
		return
	}
	s.notifier.Notify(ctx, notification.Message{
		To:      st.ContactEmail,
		Subject: fmt.Sprintf("Expense deducted: %s", e.Description),
		Body: fmt.Sprintf(
			"An expense of %s %s (%s) was deducted from the default bank account on %s.",
			e.Amount.StringFixed(2), st.Currency, e.Description,
			e.EffectiveDate().Format("2006-01-02"),
		),
	})
}

// TransferRequest describes an inter-account transfer
type TransferRequest struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
}

// Transfer moves money between two accounts of the same site. Both legs
// and both running-balance updates commit atomically. The source must
// cover the amount by its replayed effective balance.
func (s *ReconcilerService) Transfer(ctx context.Context, req TransferRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "transfer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, req.FromAccountID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
		telemetry.RecordError(span, err)
		return err
	}
	if req.FromAccountID == req.ToAccountID {
		err := shared.NewDomainError("SAME_ACCOUNT", "Cannot transfer an account to itself")
		telemetry.RecordError(span, err)
		return err
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		from, err := s.accountRepo.FindByID(ctx, req.FromAccountID)
		if err != nil {
			return fmt.Errorf("failed to load source account: %w", err)
		}
		to, err := s.accountRepo.FindByID(ctx, req.ToAccountID)
		if err != nil {
			return fmt.Errorf("failed to load target account: %w", err)
		}
		if from.SiteID != to.SiteID {
			return shared.NewDomainError("SITE_MISMATCH", "Accounts belong to different sites")
		}

		available, err := s.replayBalance(ctx, from)
		if err != nil {
			return err
		}
		if available.LessThan(req.Amount) {
			return shared.NewDomainError("INSUFFICIENT_BALANCE",
				fmt.Sprintf("Available %s, requested %s", available.StringFixed(2), req.Amount.StringFixed(2)))
		}

		if err := from.Debit(req.Amount); err != nil {
			return err
		}
		if err := to.Credit(req.Amount); err != nil {
			return err
		}

		description := req.Description
		if description == "" {
			description = "Transfer"
		}

		outLeg, err := banking.NewTransferTransaction(
			from.ID, to.ID, req.Date, req.Amount, true,
			fmt.Sprintf("%s -> %s", description, to.BankName),
			from.RunningBalance,
		)
		if err != nil {
			return err
		}
		inLeg, err := banking.NewTransferTransaction(
			to.ID, from.ID, req.Date, req.Amount, false,
			fmt.Sprintf("%s <- %s", description, from.BankName),
			to.RunningBalance,
		)
		if err != nil {
			return err
		}

		if err := s.ledgerRepo.Save(ctx, outLeg); err != nil {
			return fmt.Errorf("failed to save outgoing leg: %w", err)
		}
		if err := s.ledgerRepo.Save(ctx, inLeg); err != nil {
			return fmt.Errorf("failed to save incoming leg: %w", err)
		}
		if err := s.accountRepo.Save(ctx, from); err != nil {
			return fmt.Errorf("failed to save source account: %w", err)
		}
		if err := s.accountRepo.Save(ctx, to); err != nil {
			return fmt.Errorf("failed to save target account: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetOK(span)
	return nil
}

// Reconcile anchors the account to a bank statement: the opening balance
// is back-solved from the replayed sums so a subsequent EffectiveBalance
// call returns exactly the statement balance, and the cached running
// balance is overwritten to the same value.
func (s *ReconcilerService) Reconcile(ctx context.Context, accountID uuid.UUID, statementBalance decimal.Decimal) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "reconcile")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrAmount, statementBalance.String(),
	)

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load bank account: %w", err)
		}

		payments, expenses, transfers, err := s.ledgerComponents(ctx, account, time.Now())
		if err != nil {
			return err
		}

		opening := statementBalance.Sub(payments).Add(expenses).Sub(transfers)
		account.Reconcile(opening, statementBalance)

		return s.accountRepo.Save(ctx, account)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetOK(span)
	return nil
}

// AccountDetail is a bank account with its replayed balance and a page
// of its statement history.
type AccountDetail struct {
	Account          *banking.BankAccount                      `json:"account"`
	EffectiveBalance decimal.Decimal                           `json:"effective_balance"`
	Transactions     shared.Paginated[banking.BankTransaction] `json:"transactions"`
}

// GetAccountDetail returns the account with paged transaction history
// and the replayed effective balance.
func (s *ReconcilerService) GetAccountDetail(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) (*AccountDetail, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}

	effective, err := s.replayBalance(ctx, account)
	if err != nil {
		return nil, err
	}

	lines, err := s.ledgerRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.ledgerRepo.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return &AccountDetail{
		Account:          account,
		EffectiveBalance: effective,
		Transactions:     shared.NewPaginated(lines, total, filter.Page, filter.Limit()),
	}, nil
}
