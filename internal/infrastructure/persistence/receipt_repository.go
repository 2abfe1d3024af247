package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceiptRepository implements billing.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPayment finds the receipt issued for a payment
func (r *GormReceiptRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// NextSequence allocates the next per-site receipt number. The counter
// row is locked for update, so this must run inside the payment
// transaction; concurrent payments then serialize on the row.
func (r *GormReceiptRepository) NextSequence(ctx context.Context, siteID uuid.UUID) (int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var counter models.ReceiptCounterModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ?", siteID).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.ReceiptCounterModel{SiteID: siteID, LastValue: 0, UpdatedAt: time.Now()}
		if err := db.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.LastValue++
	counter.UpdatedAt = time.Now()
	if err := db.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastValue, nil
}

// Save persists a receipt. Only one receipt may exist per payment; a
// second insert surfaces as shared.ErrAlreadyExists.
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *billing.Receipt) error {
	var model models.ReceiptModel
	model.FromDomain(receipt)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
