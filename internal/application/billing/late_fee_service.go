package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// LateFeeService applies the site's late fee policy to overdue
// obligations. A fee is accrued once per obligation: obligations that
// already carry a fee are skipped, so repeated sweeps never compound.
type LateFeeService struct {
	siteRepo       site.SiteRepository
	obligationRepo billing.ObligationRepository
}

// NewLateFeeService creates a new LateFeeService
func NewLateFeeService(
	siteRepo site.SiteRepository,
	obligationRepo billing.ObligationRepository,
) *LateFeeService {
	return &LateFeeService{
		siteRepo:       siteRepo,
		obligationRepo: obligationRepo,
	}
}

// ApplyLateFees walks the site's overdue obligations as of the given day
// and accrues the policy fee on each that has none yet. Obligations past
// grace whose first fee block has not started are flagged overdue with a
// zero fee. Returns the number of fees applied. Sites without a late fee
// policy are a no-op.
func (s *LateFeeService) ApplyLateFees(ctx context.Context, siteID uuid.UUID, asOf time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "latefee", "apply_late_fees")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrSiteID, siteID.String())

	st, err := s.siteRepo.FindByID(ctx, siteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load site: %w", err)
	}
	if !st.HasLateFeePolicy() {
		telemetry.SetOK(span)
		return 0, nil
	}

	overdue, err := s.obligationRepo.FindOverdue(ctx, siteID, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to list overdue obligations: %w", err)
	}

	applied := 0
	for i := range overdue {
		o := &overdue[i]

		// Partially paid obligations and ones already carrying a fee
		// are left alone.
		if o.LateFee.IsPositive() {
			continue
		}
		if o.Status != billing.ObligationStatusUnpaid && o.Status != billing.ObligationStatusOverdue {
			continue
		}

		daysLate := int(asOf.Sub(o.DueDate).Hours() / 24)
		fee := st.LateFeeFor(o.Amount, daysLate)
		if !fee.IsPositive() {
			// Past grace but before the first 30-day fee block starts:
			// the obligation still turns overdue, it just costs nothing
			// yet.
			if daysLate >= *st.LateFeeGraceDays && o.Status == billing.ObligationStatusUnpaid {
				if err := o.MarkOverdue(); err != nil {
					telemetry.RecordError(span, err)
					return applied, fmt.Errorf("failed to mark obligation overdue: %w", err)
				}
				if err := s.obligationRepo.Save(ctx, o); err != nil {
					telemetry.RecordError(span, err)
					return applied, fmt.Errorf("failed to save obligation: %w", err)
				}
			}
			continue
		}

		if err := o.AddLateFee(fee); err != nil {
			telemetry.RecordError(span, err)
			return applied, fmt.Errorf("failed to accrue late fee: %w", err)
		}
		if err := s.obligationRepo.Save(ctx, o); err != nil {
			telemetry.RecordError(span, err)
			return applied, fmt.Errorf("failed to save obligation: %w", err)
		}
		applied++
	}

	telemetry.SetAttribute(span, "fees_applied", applied)
	telemetry.SetOK(span)
	return applied, nil
}
