package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseTypeRepository implements expense.ExpenseTypeRepository using GORM
type GormExpenseTypeRepository struct {
	db *gorm.DB
}

// NewGormExpenseTypeRepository creates a new GormExpenseTypeRepository
func NewGormExpenseTypeRepository(db *gorm.DB) *GormExpenseTypeRepository {
	return &GormExpenseTypeRepository{db: db}
}

// FindByID finds an expense type by its ID
func (r *GormExpenseTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseType, error) {
	var model models.ExpenseTypeModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns all expense types of a site ordered by name
func (r *GormExpenseTypeRepository) FindBySite(ctx context.Context, siteID uuid.UUID) ([]expense.ExpenseType, error) {
	var typeModels []models.ExpenseTypeModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("name ASC").
		Find(&typeModels).Error; err != nil {
		return nil, err
	}

	types := make([]expense.ExpenseType, len(typeModels))
	for i := range typeModels {
		types[i] = *typeModels[i].ToDomain()
	}
	return types, nil
}

// Save persists an expense type, inserting or updating as needed
func (r *GormExpenseTypeRepository) Save(ctx context.Context, t *expense.ExpenseType) error {
	var model models.ExpenseTypeModel
	model.FromDomain(t)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

// Delete removes an expense type
func (r *GormExpenseTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.ExpenseTypeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
