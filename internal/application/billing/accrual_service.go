package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// AccrualService creates the periodic dues and one-off extra-collection
// obligations of a site. Both operations are idempotent: the accrual key
// (apartment, year, month, kind) is unique in storage, so re-runs and
// concurrent sweeps skip apartments that already have their obligation.
type AccrualService struct {
	siteRepo       site.SiteRepository
	apartmentRepo  site.ApartmentRepository
	obligationRepo billing.ObligationRepository
}

// NewAccrualService creates a new AccrualService
func NewAccrualService(
	siteRepo site.SiteRepository,
	apartmentRepo site.ApartmentRepository,
	obligationRepo billing.ObligationRepository,
) *AccrualService {
	return &AccrualService{
		siteRepo:       siteRepo,
		apartmentRepo:  apartmentRepo,
		obligationRepo: obligationRepo,
	}
}

// EnsureMonthlyDues creates the dues obligation of every apartment of the
// site for the given period, skipping apartments that already have one or
// whose computed amount is not positive. Returns the number of
// obligations created.
func (s *AccrualService) EnsureMonthlyDues(ctx context.Context, siteID uuid.UUID, year, month int) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accrual", "ensure_monthly_dues")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, siteID.String(),
		telemetry.SpanAttrYear, year,
		telemetry.SpanAttrMonth, month,
	)

	if month < 1 || month > 12 {
		err := shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
		telemetry.RecordError(span, err)
		return 0, err
	}

	st, err := s.siteRepo.FindByID(ctx, siteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load site: %w", err)
	}

	apartments, err := s.apartmentRepo.FindBySite(ctx, siteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to list apartments: %w", err)
	}

	dueDate := site.EndOfMonth(year, month)
	created := 0
	for i := range apartments {
		apt := &apartments[i]

		amount := apt.MonthlyDues(st.DefaultMonthlyDues)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		exists, err := s.obligationRepo.ExistsForPeriod(ctx, siteID, apt.ID, year, month, billing.ObligationKindDues)
		if err != nil {
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to check accrual key: %w", err)
		}
		if exists {
			continue
		}

		startDay, endDay := apt.WindowDays(st)
		obligation, err := billing.NewObligation(
			siteID, apt.ID, year, month,
			billing.ObligationKindDues,
			amount.Round(2),
			dueDate,
			site.ClampToMonth(year, month, startDay),
			site.ClampToMonth(year, month, endDay),
			fmt.Sprintf("Dues %04d-%02d %s", year, month, apt.Label()),
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to build dues obligation: %w", err)
		}

		if err := s.obligationRepo.Save(ctx, obligation); err != nil {
			// A concurrent sweep won the accrual key: benign, move on.
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to save dues obligation: %w", err)
		}
		created++
	}

	telemetry.SetAttribute(span, "obligations_created", created)
	telemetry.SetOK(span)
	return created, nil
}

// ExtraCollectionRequest describes a one-off pro-rata collection
type ExtraCollectionRequest struct {
	SiteID      uuid.UUID
	Year        int
	Month       int
	TotalAmount decimal.Decimal
	Description string
}

// CreateExtraCollection splits the total across the site's apartments in
// proportion to their share rates and creates one obligation per
// apartment. Each share is rounded to two decimals, so the sum of shares
// may differ from the total by at most a cent per apartment. Apartments
// that already have an extra-collection obligation for the period keep
// it untouched.
func (s *AccrualService) CreateExtraCollection(ctx context.Context, req ExtraCollectionRequest) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "accrual", "create_extra_collection")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSiteID, req.SiteID.String(),
		telemetry.SpanAttrYear, req.Year,
		telemetry.SpanAttrMonth, req.Month,
		telemetry.SpanAttrAmount, req.TotalAmount.String(),
	)

	if req.Month < 1 || req.Month > 12 {
		err := shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
		telemetry.RecordError(span, err)
		return 0, err
	}
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Collection total must be positive")
		telemetry.RecordError(span, err)
		return 0, err
	}

	st, err := s.siteRepo.FindByID(ctx, req.SiteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to load site: %w", err)
	}

	totalShare, err := s.apartmentRepo.TotalShareRate(ctx, req.SiteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to sum share rates: %w", err)
	}
	if totalShare.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("NO_SHARES", "Site has no apartments with a positive share rate")
		telemetry.RecordError(span, err)
		return 0, err
	}

	apartments, err := s.apartmentRepo.FindBySite(ctx, req.SiteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to list apartments: %w", err)
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Extra collection %04d-%02d", req.Year, req.Month)
	}

	dueDate := site.EndOfMonth(req.Year, req.Month)
	startDay, endDay := st.PaymentWindowDays()

	created := 0
	for i := range apartments {
		apt := &apartments[i]

		share := req.TotalAmount.Mul(apt.ShareRate).Div(totalShare).Round(2)
		if share.LessThanOrEqual(decimal.Zero) {
			continue
		}

		exists, err := s.obligationRepo.ExistsForPeriod(ctx, req.SiteID, apt.ID, req.Year, req.Month, billing.ObligationKindExtraCollection)
		if err != nil {
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to check accrual key: %w", err)
		}
		if exists {
			continue
		}

		obligation, err := billing.NewObligation(
			req.SiteID, apt.ID, req.Year, req.Month,
			billing.ObligationKindExtraCollection,
			share,
			dueDate,
			site.ClampToMonth(req.Year, req.Month, startDay),
			site.ClampToMonth(req.Year, req.Month, endDay),
			description,
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to build collection obligation: %w", err)
		}

		if err := s.obligationRepo.Save(ctx, obligation); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			telemetry.RecordError(span, err)
			return created, fmt.Errorf("failed to save collection obligation: %w", err)
		}
		created++
	}

	telemetry.SetAttribute(span, "obligations_created", created)
	telemetry.SetOK(span)
	return created, nil
}
