package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements banking.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns all accounts of a site ordered by bank name
func (r *GormBankAccountRepository) FindBySite(ctx context.Context, siteID uuid.UUID) ([]banking.BankAccount, error) {
	var accountModels []models.BankAccountModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("bank_name ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]banking.BankAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// FindDefaultForSite returns the account expenses are paid from: the one
// flagged default, else the first by bank name.
func (r *GormBankAccountRepository) FindDefaultForSite(ctx context.Context, siteID uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("is_default DESC, bank_name ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a bank account, inserting or updating as needed
func (r *GormBankAccountRepository) Save(ctx context.Context, a *banking.BankAccount) error {
	var model models.BankAccountModel
	model.FromDomain(a)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

// Delete removes a bank account
func (r *GormBankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.BankAccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
