package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// BalanceInvalidator drops cached closing-balance snapshots of a site
// from the given period onward. Payment writes dated in a past month
// stale every report month from that period on.
type BalanceInvalidator interface {
	InvalidateFrom(ctx context.Context, siteID uuid.UUID, year, month int) error
}

// PaymentService records and reverses payments. Every mutation runs in
// one storage transaction: the payment row, the obligation status
// refresh, the bank ledger line with its running-balance update, and the
// receipt all commit or roll back together.
type PaymentService struct {
	paymentRepo    billing.PaymentRepository
	obligationRepo billing.ObligationRepository
	receiptRepo    billing.ReceiptRepository
	accountRepo    banking.BankAccountRepository
	ledgerRepo     banking.BankTransactionRepository
	txManager      shared.TransactionManager
	invalidator    BalanceInvalidator
}

// NewPaymentService creates a new PaymentService. invalidator may be
// nil when no snapshot cache is deployed.
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	obligationRepo billing.ObligationRepository,
	receiptRepo billing.ReceiptRepository,
	accountRepo banking.BankAccountRepository,
	ledgerRepo banking.BankTransactionRepository,
	txManager shared.TransactionManager,
	invalidator BalanceInvalidator,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		obligationRepo: obligationRepo,
		receiptRepo:    receiptRepo,
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		txManager:      txManager,
		invalidator:    invalidator,
	}
}

// invalidateBalances drops cached report balances from the payment's
// month onward. Failures only cost the report fast path.
func (s *PaymentService) invalidateBalances(ctx context.Context, siteID uuid.UUID, date time.Time) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.InvalidateFrom(ctx, siteID, date.Year(), int(date.Month()))
}

// RecordPaymentRequest describes a payment being recorded
type RecordPaymentRequest struct {
	SiteID        uuid.UUID
	ApartmentID   uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        billing.PaymentMethod
	Description   string
	ObligationID  *uuid.UUID
	BankAccountID *uuid.UUID
	IssueReceipt  bool
}

// RecordPaymentResult reports what was written
type RecordPaymentResult struct {
	PaymentID        uuid.UUID                `json:"payment_id"`
	ObligationStatus billing.ObligationStatus `json:"obligation_status,omitempty"`
	Remaining        decimal.Decimal          `json:"remaining"`
	BalanceAfter     *decimal.Decimal         `json:"balance_after,omitempty"`
	ReceiptNumber    string                   `json:"receipt_number,omitempty"`
}

// RecordPayment inserts a payment, optionally applies it to an
// obligation, routes it to a bank account, and issues a receipt. The
// obligation status is always recomputed from the full set of
// non-reversed payments, never incremented in place.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, req.SiteID.String(),
		telemetry.SpanAttrApartmentID, req.ApartmentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	payment, err := billing.NewPayment(req.SiteID, req.ApartmentID, req.Amount, req.PaymentDate, req.Method, req.Description)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &RecordPaymentResult{Remaining: decimal.Zero}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.ObligationID != nil {
			payment.WithObligation(*req.ObligationID)
		}
		if req.BankAccountID != nil {
			payment.WithBankAccount(*req.BankAccountID)
		}

		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		result.PaymentID = payment.ID

		if req.ObligationID != nil {
			obligation, err := s.applyToObligation(ctx, req.SiteID, *req.ObligationID)
			if err != nil {
				return err
			}
			result.ObligationStatus = obligation.Status
			result.Remaining = obligation.Remaining()
		}

		if req.BankAccountID != nil {
			balanceAfter, err := s.routeToAccount(ctx, payment)
			if err != nil {
				return err
			}
			result.BalanceAfter = &balanceAfter
		}

		if req.IssueReceipt {
			number, err := s.issueReceipt(ctx, payment)
			if err != nil {
				return err
			}
			result.ReceiptNumber = number
		}

		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidateBalances(ctx, req.SiteID, req.PaymentDate)

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, payment.ID.String())
	telemetry.SetOK(span)
	return result, nil
}

// applyToObligation recomputes the obligation's paid total and status
// from the full non-reversed payment set.
func (s *PaymentService) applyToObligation(ctx context.Context, siteID, obligationID uuid.UUID) (*billing.Obligation, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, obligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load obligation: %w", err)
	}
	if obligation.SiteID != siteID {
		return nil, shared.NewDomainError("SITE_MISMATCH", "Obligation belongs to a different site")
	}

	paid, err := s.paymentRepo.SumActiveByObligation(ctx, obligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	if err := obligation.RefreshPaidTotal(paid); err != nil {
		return nil, err
	}
	if err := s.obligationRepo.Save(ctx, obligation); err != nil {
		return nil, fmt.Errorf("failed to save obligation: %w", err)
	}
	return obligation, nil
}

// routeToAccount credits the bank account and appends the income ledger
// line carrying the balance after the credit.
func (s *PaymentService) routeToAccount(ctx context.Context, payment *billing.Payment) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindByID(ctx, *payment.BankAccountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load bank account: %w", err)
	}
	if account.SiteID != payment.SiteID {
		return decimal.Zero, shared.NewDomainError("SITE_MISMATCH", "Bank account belongs to a different site")
	}

	if err := account.Credit(payment.Amount); err != nil {
		return decimal.Zero, err
	}

	line, err := banking.NewIncomeTransaction(
		account.ID, payment.ID,
		payment.PaymentDate, payment.Amount,
		payment.Description,
		account.RunningBalance,
	)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.ledgerRepo.Save(ctx, line); err != nil {
		return decimal.Zero, fmt.Errorf("failed to save ledger line: %w", err)
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return decimal.Zero, fmt.Errorf("failed to save bank account: %w", err)
	}
	return account.RunningBalance, nil
}

// issueReceipt allocates the next per-site sequence and writes the
// receipt. The sequence allocation locks the site's counter row, so two
// concurrent payments cannot share a number.
func (s *PaymentService) issueReceipt(ctx context.Context, payment *billing.Payment) (string, error) {
	sequence, err := s.receiptRepo.NextSequence(ctx, payment.SiteID)
	if err != nil {
		return "", fmt.Errorf("failed to allocate receipt sequence: %w", err)
	}

	receipt, err := billing.NewReceipt(payment.SiteID, payment.ID, sequence, payment.Amount, payment.Description)
	if err != nil {
		return "", err
	}
	if err := s.receiptRepo.Save(ctx, receipt); err != nil {
		return "", fmt.Errorf("failed to save receipt: %w", err)
	}

	payment.ReceiptID = &receipt.ID
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to link receipt to payment: %w", err)
	}
	return receipt.Number(), nil
}

// ReversePayment tombstones a payment and undoes its side effects in one
// transaction: the linked obligation is recomputed from the remaining
// non-reversed payments, the bank ledger line is marked reversed with
// the running balance debited back, and the receipt is voided.
func (s *PaymentService) ReversePayment(ctx context.Context, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reverse_payment")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var reversed *billing.Payment
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}

		if err := payment.MarkReversed(); err != nil {
			return err
		}
		reversed = payment
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		if payment.ObligationID != nil {
			if _, err := s.applyToObligation(ctx, payment.SiteID, *payment.ObligationID); err != nil {
				return err
			}
		}

		if payment.BankAccountID != nil {
			if err := s.unrouteFromAccount(ctx, payment); err != nil {
				return err
			}
		}

		if payment.ReceiptID != nil {
			receipt, err := s.receiptRepo.FindByPayment(ctx, payment.ID)
			if err != nil {
				return fmt.Errorf("failed to load receipt: %w", err)
			}
			if err := receipt.MarkReversed(); err != nil {
				return err
			}
			if err := s.receiptRepo.Save(ctx, receipt); err != nil {
				return fmt.Errorf("failed to save receipt: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.invalidateBalances(ctx, reversed.SiteID, reversed.PaymentDate)

	telemetry.SetOK(span)
	return nil
}

// unrouteFromAccount debits the account back and tombstones the income
// ledger line written when the payment was routed.
func (s *PaymentService) unrouteFromAccount(ctx context.Context, payment *billing.Payment) error {
	account, err := s.accountRepo.FindByID(ctx, *payment.BankAccountID)
	if err != nil {
		return fmt.Errorf("failed to load bank account: %w", err)
	}
	if err := account.Debit(payment.Amount); err != nil {
		return err
	}

	line, err := s.ledgerRepo.FindActiveByPayment(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to load ledger line: %w", err)
	}
	if err := line.MarkReversed(); err != nil {
		return err
	}
	if err := s.ledgerRepo.Save(ctx, line); err != nil {
		return fmt.Errorf("failed to save ledger line: %w", err)
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save bank account: %w", err)
	}
	return nil
}

// ListPaymentsBySite returns the site's payments through the filter
func (s *PaymentService) ListPaymentsBySite(ctx context.Context, siteID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	return s.paymentRepo.FindBySite(ctx, siteID, filter)
}

// ListObligations returns the site's obligations through the filter
func (s *PaymentService) ListObligations(ctx context.Context, siteID uuid.UUID, filter billing.ObligationFilter) ([]billing.Obligation, error) {
	return s.obligationRepo.FindBySite(ctx, siteID, filter)
}

// DeleteObligation removes an obligation that has no collected money.
// Deletion is rejected while any non-reversed payment exists against it.
func (s *PaymentService) DeleteObligation(ctx context.Context, obligationID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete_obligation")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrObligationID, obligationID.String())

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		paid, err := s.paymentRepo.SumActiveByObligation(ctx, obligationID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		if paid.IsPositive() {
			return shared.NewDomainError("INVALID_STATE", "Cannot delete an obligation with collected payments")
		}
		return s.obligationRepo.Delete(ctx, obligationID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetOK(span)
	return nil
}
