package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormApartmentRepository implements site.ApartmentRepository using GORM
type GormApartmentRepository struct {
	db *gorm.DB
}

// NewGormApartmentRepository creates a new GormApartmentRepository
func NewGormApartmentRepository(db *gorm.DB) *GormApartmentRepository {
	return &GormApartmentRepository{db: db}
}

// FindByID finds an apartment by its ID
func (r *GormApartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*site.Apartment, error) {
	var model models.ApartmentModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns all apartments of a site ordered by block and number
func (r *GormApartmentRepository) FindBySite(ctx context.Context, siteID uuid.UUID) ([]site.Apartment, error) {
	var apartmentModels []models.ApartmentModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("block ASC, number ASC").
		Find(&apartmentModels).Error; err != nil {
		return nil, err
	}

	apartments := make([]site.Apartment, len(apartmentModels))
	for i := range apartmentModels {
		apartments[i] = *apartmentModels[i].ToDomain()
	}
	return apartments, nil
}

// TotalShareRate sums the share rates of all apartments of the site
func (r *GormApartmentRepository) TotalShareRate(ctx context.Context, siteID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.ApartmentModel{}).
		Select("COALESCE(SUM(share_rate), 0) as total").
		Where("site_id = ?", siteID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists an apartment, inserting or updating as needed
func (r *GormApartmentRepository) Save(ctx context.Context, a *site.Apartment) error {
	var model models.ApartmentModel
	model.FromDomain(a)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

// Delete removes an apartment
func (r *GormApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.ApartmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
