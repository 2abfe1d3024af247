package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSiteRepository implements site.SiteRepository using GORM
type GormSiteRepository struct {
	db *gorm.DB
}

// NewGormSiteRepository creates a new GormSiteRepository
func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

// FindByID finds a site by its ID
func (r *GormSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	var model models.SiteModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all managed sites ordered by name
func (r *GormSiteRepository) FindAll(ctx context.Context) ([]site.Site, error) {
	var siteModels []models.SiteModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Order("name ASC").
		Find(&siteModels).Error; err != nil {
		return nil, err
	}

	sites := make([]site.Site, len(siteModels))
	for i := range siteModels {
		sites[i] = *siteModels[i].ToDomain()
	}
	return sites, nil
}

// Save persists a site, inserting or updating as needed
func (r *GormSiteRepository) Save(ctx context.Context, s *site.Site) error {
	var model models.SiteModel
	model.FromDomain(s)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

// Delete removes a site
func (r *GormSiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.SiteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
