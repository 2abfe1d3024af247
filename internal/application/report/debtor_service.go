package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/site"
)

// Debtor is one apartment with money outstanding against it
type Debtor struct {
	ApartmentID     uuid.UUID       `json:"apartment_id"`
	ApartmentLabel  string          `json:"apartment_label"`
	OwnerName       string          `json:"owner_name"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	OpenObligations int             `json:"open_obligations"`
	EarliestDueDate time.Time       `json:"earliest_due_date"`
	DaysOverdue     int             `json:"days_overdue"`
}

// DebtorService lists apartments with outstanding balances
type DebtorService struct {
	apartmentRepo  site.ApartmentRepository
	obligationRepo billing.ObligationRepository
}

// NewDebtorService creates a new DebtorService
func NewDebtorService(apartmentRepo site.ApartmentRepository, obligationRepo billing.ObligationRepository) *DebtorService {
	return &DebtorService{
		apartmentRepo:  apartmentRepo,
		obligationRepo: obligationRepo,
	}
}

// DebtorList returns every apartment of the site whose non-cancelled
// obligations carry a positive remainder (amount plus late fee minus
// collected), with the earliest unresolved due date and how many days
// past it asOf lies. Ordered by outstanding amount, largest first.
func (s *DebtorService) DebtorList(ctx context.Context, siteID uuid.UUID, asOf time.Time) ([]Debtor, error) {
	apartments, err := s.apartmentRepo.FindBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}

	debtors := make([]Debtor, 0)
	for i := range apartments {
		apt := &apartments[i]

		obligations, err := s.obligationRepo.FindByApartment(ctx, apt.ID, true)
		if err != nil {
			return nil, fmt.Errorf("failed to list obligations for apartment %s: %w", apt.ID, err)
		}

		outstanding := decimal.Zero
		open := 0
		var earliest time.Time
		for j := range obligations {
			remaining := obligations[j].Remaining()
			if !remaining.IsPositive() {
				continue
			}
			outstanding = outstanding.Add(remaining)
			open++
			if earliest.IsZero() || obligations[j].DueDate.Before(earliest) {
				earliest = obligations[j].DueDate
			}
		}
		if !outstanding.IsPositive() {
			continue
		}

		daysOverdue := 0
		if earliest.Before(asOf) {
			daysOverdue = int(asOf.Sub(earliest).Hours() / 24)
		}

		debtors = append(debtors, Debtor{
			ApartmentID:     apt.ID,
			ApartmentLabel:  apt.Label(),
			OwnerName:       apt.OwnerName,
			Outstanding:     outstanding,
			OpenObligations: open,
			EarliestDueDate: earliest,
			DaysOverdue:     daysOverdue,
		})
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Outstanding.GreaterThan(debtors[j].Outstanding)
	})
	return debtors, nil
}
