package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/condo/backend/internal/domain/banking"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBankTransactionRepository implements banking.BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a ledger line by its ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount returns ledger lines of an account matching the filter
func (r *GormBankTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) ([]banking.BankTransaction, error) {
	query := r.filteredQuery(ctx, accountID, filter)

	orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var transactionModels []models.BankTransactionModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]banking.BankTransaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = *transactionModels[i].ToDomain()
	}
	return transactions, nil
}

// CountByAccount counts ledger lines of an account matching the filter
func (r *GormBankTransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) (int64, error) {
	var count int64
	if err := r.filteredQuery(ctx, accountID, filter).
		Model(&models.BankTransactionModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActiveByPayment returns the non-reversed ledger line of a payment
func (r *GormBankTransactionRepository) FindActiveByPayment(ctx context.Context, paymentID uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("payment_id = ? AND reversed = ?", paymentID, false).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsActiveForExpense reports whether the expense was already deducted
func (r *GormBankTransactionRepository) ExistsActiveForExpense(ctx context.Context, expenseID uuid.UUID) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.BankTransactionModel{}).
		Where("expense_id = ? AND reversed = ?", expenseID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumActiveTransfers nets the signed transfer legs touching the account
func (r *GormBankTransactionRepository) SumActiveTransfers(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.BankTransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("bank_account_id = ? AND kind = ? AND reversed = ?",
			accountID, string(banking.TransactionKindTransfer), false).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists a ledger line. A second non-reversed line for the same
// expense violates the partial unique index and surfaces as
// shared.ErrAlreadyExists.
func (r *GormBankTransactionRepository) Save(ctx context.Context, t *banking.BankTransaction) error {
	var model models.BankTransactionModel
	model.FromDomain(t)
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormBankTransactionRepository) filteredQuery(ctx context.Context, accountID uuid.UUID, filter banking.TransactionFilter) *gorm.DB {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("bank_account_id = ?", accountID)
	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	if !filter.IncludeReversed {
		query = query.Where("reversed = ?", false)
	}
	return query
}
