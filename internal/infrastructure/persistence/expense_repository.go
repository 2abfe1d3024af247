package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/condo/backend/internal/domain/expense"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.ExpenseRepository using GORM.
// "Qualifying" filters join against expense_types to drop cancelled
// expenses and those whose type is flagged exclude_from_report.
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySite returns expenses of a site with effective date in [from, to]
func (r *GormExpenseRepository) FindBySite(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	query := dbFromContext(ctx, r.db).WithContext(ctx).Where("site_id = ?", siteID)
	if !from.IsZero() {
		query = query.Where("effective_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("effective_date <= ?", to)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Order("effective_date ASC").Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return toExpenses(expenseModels), nil
}

// FindDueQualifying returns qualifying expenses whose effective date is
// on or before asOf. A nil siteID spans all sites.
func (r *GormExpenseRepository) FindDueQualifying(ctx context.Context, siteID *uuid.UUID, asOf time.Time) ([]expense.Expense, error) {
	query := r.qualifyingQuery(ctx).Where("expenses.effective_date <= ?", asOf)
	if siteID != nil {
		query = query.Where("expenses.site_id = ?", *siteID)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Order("expenses.effective_date ASC").Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return toExpenses(expenseModels), nil
}

// SumQualifyingInRange sums qualifying expense amounts with effective
// date inside [from, to]; zero bounds open the range.
func (r *GormExpenseRepository) SumQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := r.qualifyingQuery(ctx).
		Select("COALESCE(SUM(expenses.amount), 0) as total").
		Where("expenses.site_id = ?", siteID)
	if !from.IsZero() {
		query = query.Where("expenses.effective_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("expenses.effective_date <= ?", to)
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindQualifyingInRange lists qualifying expenses for report detail
func (r *GormExpenseRepository) FindQualifyingInRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	query := r.qualifyingQuery(ctx).Where("expenses.site_id = ?", siteID)
	if !from.IsZero() {
		query = query.Where("expenses.effective_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("expenses.effective_date <= ?", to)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Order("expenses.effective_date ASC").Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return toExpenses(expenseModels), nil
}

// Save persists an expense, inserting or updating as needed
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(e)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(&model).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormExpenseRepository) qualifyingQuery(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Joins("JOIN expense_types ON expense_types.id = expenses.expense_type_id").
		Where("expenses.cancelled = ?", false).
		Where("expense_types.exclude_from_report = ?", false)
}

func toExpenses(expenseModels []models.ExpenseModel) []expense.Expense {
	expenses := make([]expense.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses
}
