package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/database"
	"github.com/adicipta/procure-api/internal/domain"
)

// SetupTestDB opens a throwaway sqlite database in a per-test temp
// directory and migrates the full schema onto it. The file is removed
// with the temp dir when the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s/procure_test.db?_busy_timeout=5000", t.TempDir())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")

	return db
}

// NewTestLogger returns a logger that discards everything
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// ContextWithUser returns a context carrying an authenticated test user
func ContextWithUser(userID, name string, roles ...domain.UserRoleType) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: userID,
		Email:  userID + "@example.com",
		Name:   name,
		Roles:  roles,
	})
}

// CreateTestCompany creates a company to issue documents under
func CreateTestCompany(t *testing.T, db *gorm.DB, companyCode string) *domain.Company {
	t.Helper()
	company := &domain.Company{
		CompanyCode: companyCode,
		Name:        companyCode + " Test Company",
		IsActive:    true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestBankAccount creates an active bank account for transfers
func CreateTestBankAccount(t *testing.T, db *gorm.DB, accountCode string) *domain.BankAccount {
	t.Helper()
	account := &domain.BankAccount{
		AccountCode:   accountCode,
		BankName:      "Test Bank",
		AccountNumber: "1234567890",
		AccountHolder: "Test Holder",
		IsActive:      true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// TestLine builds a sales order demand line with a default unit price
func TestLine(itemCode, productCode string, quantity int) domain.SalesOrderLine {
	return domain.SalesOrderLine{
		ItemCode:    itemCode,
		ProductCode: productCode,
		ProductName: "Product " + productCode,
		Quantity:    quantity,
		UnitPrice:   decimal.NewFromInt(100),
	}
}

// CreateTestSalesOrder creates an open sales order with the given lines.
// The company is created as well when it does not exist yet.
func CreateTestSalesOrder(t *testing.T, db *gorm.DB, soCode, companyCode string, lines ...domain.SalesOrderLine) *domain.SalesOrder {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&domain.Company{}).Where("company_code = ?", companyCode).Count(&count).Error)
	if count == 0 {
		CreateTestCompany(t, db, companyCode)
	}

	so := &domain.SalesOrder{
		SOCode:       soCode,
		CustomerName: "Test Customer",
		CompanyCode:  companyCode,
		Status:       domain.SalesOrderStatusOpen,
		OrderDate:    time.Now().UTC(),
	}
	for i := range lines {
		lines[i].SOCode = soCode
	}
	so.Lines = lines
	require.NoError(t, db.Create(so).Error)
	return so
}
