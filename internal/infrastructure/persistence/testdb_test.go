package persistence

import (
	"testing"

	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// SQLite tolerates the Postgres column types; the partial unique index
// on expense deductions lives in the SQL migrations and is therefore
// not present here.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SiteModel{},
		&models.ApartmentModel{},
		&models.ObligationModel{},
		&models.PaymentModel{},
		&models.ReceiptModel{},
		&models.ReceiptCounterModel{},
		&models.BankAccountModel{},
		&models.BankTransactionModel{},
		&models.ExpenseTypeModel{},
		&models.ExpenseModel{},
	)
	require.NoError(t, err)

	return db
}
