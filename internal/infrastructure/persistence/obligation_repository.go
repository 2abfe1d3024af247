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
	"gorm.io/gorm"
)

// GormObligationRepository implements billing.ObligationRepository using GORM
type GormObligationRepository struct {
	db *gorm.DB
}

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

// FindByID finds an obligation by its ID
func (r *GormObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Obligation, error) {
	var model models.ObligationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns obligations of a site matching the filter
func (r *GormObligationRepository) FindBySite(ctx context.Context, siteID uuid.UUID, filter billing.ObligationFilter) ([]billing.Obligation, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("site_id = ?", siteID)
	query = r.applyFilter(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ObligationSortFields, "due_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var obligationModels []models.ObligationModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&obligationModels).Error; err != nil {
		return nil, err
	}

	return toObligations(obligationModels), nil
}

// FindByApartment returns obligations of one apartment, optionally only
// those still accepting payments, ordered by period.
func (r *GormObligationRepository) FindByApartment(ctx context.Context, apartmentID uuid.UUID, onlyOutstanding bool) ([]billing.Obligation, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("apartment_id = ?", apartmentID)
	if onlyOutstanding {
		query = query.Where("status IN ?", outstandingStatuses())
	}

	var obligationModels []models.ObligationModel
	if err := query.Order("year ASC, month ASC").Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	return toObligations(obligationModels), nil
}

// FindOverdue returns outstanding obligations with a due date before the given day
func (r *GormObligationRepository) FindOverdue(ctx context.Context, siteID uuid.UUID, before time.Time) ([]billing.Obligation, error) {
	var obligationModels []models.ObligationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("site_id = ?", siteID).
		Where("status IN ?", outstandingStatuses()).
		Where("due_date < ?", before).
		Order("due_date ASC").
		Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	return toObligations(obligationModels), nil
}

// ExistsForPeriod reports whether the accrual key is already taken
func (r *GormObligationRepository) ExistsForPeriod(ctx context.Context, siteID, apartmentID uuid.UUID, year, month int, kind billing.ObligationKind) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("site_id = ? AND apartment_id = ? AND year = ? AND month = ? AND kind = ?",
			siteID, apartmentID, year, month, string(kind)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists an obligation. A violation of the accrual uniqueness
// constraint surfaces as shared.ErrAlreadyExists.
func (r *GormObligationRepository) Save(ctx context.Context, o *billing.Obligation) error {
	var model models.ObligationModel
	model.FromDomain(o)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes an obligation
func (r *GormObligationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.ObligationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormObligationRepository) applyFilter(query *gorm.DB, filter billing.ObligationFilter) *gorm.DB {
	if filter.ApartmentID != nil {
		query = query.Where("apartment_id = ?", *filter.ApartmentID)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	return query
}

func outstandingStatuses() []string {
	return []string{
		string(billing.ObligationStatusUnpaid),
		string(billing.ObligationStatusPartiallyPaid),
		string(billing.ObligationStatusOverdue),
	}
}

func toObligations(obligationModels []models.ObligationModel) []billing.Obligation {
	obligations := make([]billing.Obligation, len(obligationModels))
	for i := range obligationModels {
		obligations[i] = *obligationModels[i].ToDomain()
	}
	return obligations
}
