package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns payments of a site matching the filter
func (r *GormPaymentRepository) FindBySite(ctx context.Context, siteID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("site_id = ?", siteID)
	if filter.ApartmentID != nil {
		query = query.Where("apartment_id = ?", *filter.ApartmentID)
	}
	if filter.From != nil {
		query = query.Where("payment_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("payment_date <= ?", *filter.To)
	}
	if !filter.IncludeReversed {
		query = query.Where("reversed = ?", false)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var paymentModels []models.PaymentModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

// FindByObligation returns payments applied to one obligation
func (r *GormPaymentRepository) FindByObligation(ctx context.Context, obligationID uuid.UUID, includeReversed bool) ([]billing.Payment, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("obligation_id = ?", obligationID)
	if !includeReversed {
		query = query.Where("reversed = ?", false)
	}

	var paymentModels []models.PaymentModel
	if err := query.Order("payment_date ASC").Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

// SumActiveByObligation sums non-reversed payment amounts against one obligation
func (r *GormPaymentRepository) SumActiveByObligation(ctx context.Context, obligationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("obligation_id = ? AND reversed = ?", obligationID, false).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumActiveByObligations sums non-reversed payment amounts per obligation
func (r *GormPaymentRepository) SumActiveByObligations(ctx context.Context, obligationIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(obligationIDs))
	if len(obligationIDs) == 0 {
		return sums, nil
	}

	type row struct {
		ObligationID uuid.UUID
		Total        decimal.Decimal
	}
	var rows []row
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("obligation_id, COALESCE(SUM(amount), 0) as total").
		Where("obligation_id IN ? AND reversed = ?", obligationIDs, false).
		Group("obligation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		sums[r.ObligationID] = r.Total
	}
	return sums, nil
}

// SumActiveByAccount sums non-reversed payment amounts routed to a bank account
func (r *GormPaymentRepository) SumActiveByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("bank_account_id = ? AND reversed = ?", accountID, false).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumCollectedInRange sums non-reversed obligation-linked payments dated
// within [from, to] for the site. Either bound may be zero for open ranges.
func (r *GormPaymentRepository) SumCollectedInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("site_id = ? AND reversed = ? AND obligation_id IS NOT NULL", siteID, false)
	if !from.IsZero() {
		query = query.Where("payment_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("payment_date <= ?", to)
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists a payment, inserting or updating as needed
func (r *GormPaymentRepository) Save(ctx context.Context, p *billing.Payment) error {
	var model models.PaymentModel
	model.FromDomain(p)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

func toPayments(paymentModels []models.PaymentModel) []billing.Payment {
	payments := make([]billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}
