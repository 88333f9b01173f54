package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/tests/testutil"
)

func createPO(t *testing.T, db *gorm.DB, poCode, soCode string, status domain.PurchaseOrderStatus, productCode string, quantity int) {
	t.Helper()
	po := &domain.PurchaseOrder{
		POCode:        poCode,
		SOCode:        soCode,
		SupplierName:  "Supplier",
		Status:        status,
		Priority:      domain.PriorityMedium,
		CompanyCode:   "ACME",
		SubmittedByID: "tester",
		Items: []domain.PurchaseOrderItem{{
			POItemCode:    poCode + "-01",
			POCode:        poCode,
			ProductCode:   productCode,
			Quantity:      quantity,
			PurchasePrice: decimal.NewFromInt(50),
		}},
	}
	require.NoError(t, db.Create(po).Error)
}

func TestSumOrderedQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSalesOrderRepository(db)
	ctx := context.Background()

	testutil.CreateTestSalesOrder(t, db, "SO-001", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))

	createPO(t, db, "PO-001", "SO-001", domain.StatusSubmitted, "PRD-1", 4)
	createPO(t, db, "PO-002", "SO-001", domain.StatusApprovedSpv, "PRD-1", 3)
	createPO(t, db, "PO-003", "SO-001", domain.StatusRejected, "PRD-1", 5)
	createPO(t, db, "PO-004", "SO-001", domain.StatusSubmitted, "PRD-OTHER", 9)

	total, err := repo.SumOrderedQuantity(ctx, "SO-001", "PRD-1")
	require.NoError(t, err)
	require.Equal(t, 7, total, "rejected orders and other products must not count")
}

func TestSumOrderedQuantityExcludesSoftDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	soRepo := repository.NewSalesOrderRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	ctx := context.Background()

	testutil.CreateTestSalesOrder(t, db, "SO-002", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))
	createPO(t, db, "PO-010", "SO-002", domain.StatusSubmitted, "PRD-1", 6)

	require.NoError(t, poRepo.SoftDelete(ctx, "PO-010"))

	total, err := soRepo.SumOrderedQuantity(ctx, "SO-002", "PRD-1")
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestGetByCodePreloadsLines(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSalesOrderRepository(db)
	ctx := context.Background()

	testutil.CreateTestSalesOrder(t, db, "SO-003", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 5),
		testutil.TestLine("ITM-2", "PRD-2", 8))

	so, err := repo.GetByCode(ctx, "SO-003")
	require.NoError(t, err)
	require.Len(t, so.Lines, 2)
	require.Equal(t, domain.SalesOrderStatusOpen, so.Status)
}

func TestUpsertCreatesThenRefreshes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSalesOrderRepository(db)
	ctx := context.Background()
	testutil.CreateTestCompany(t, db, "ACME")

	incoming := &domain.SalesOrder{
		SOCode:       "SO-100",
		CustomerName: "First Name",
		CompanyCode:  "ACME",
		Status:       domain.SalesOrderStatusOpen,
		OrderDate:    time.Now().UTC(),
		Lines: []domain.SalesOrderLine{
			{SOCode: "SO-100", ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 10},
		},
	}
	require.NoError(t, repo.Upsert(ctx, incoming))

	refreshed := &domain.SalesOrder{
		SOCode:       "SO-100",
		CustomerName: "Renamed Customer",
		CompanyCode:  "ACME",
		Status:       domain.SalesOrderStatusOpen,
		OrderDate:    time.Now().UTC(),
		Lines: []domain.SalesOrderLine{
			// Existing line with a new quantity must be left alone
			{SOCode: "SO-100", ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 99},
			{SOCode: "SO-100", ItemCode: "ITM-2", ProductCode: "PRD-2", Quantity: 4},
		},
	}
	require.NoError(t, repo.Upsert(ctx, refreshed))

	so, err := repo.GetByCode(ctx, "SO-100")
	require.NoError(t, err)
	require.Equal(t, "Renamed Customer", so.CustomerName)
	require.Len(t, so.Lines, 2)
	for _, line := range so.Lines {
		if line.ItemCode == "ITM-1" {
			require.Equal(t, 10, line.Quantity, "known lines are append-only")
		}
	}
}

func TestUpsertLeavesNonOpenOrdersAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSalesOrderRepository(db)
	ctx := context.Background()

	testutil.CreateTestSalesOrder(t, db, "SO-200", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))
	require.NoError(t, repo.UpdateStatus(ctx, "SO-200", domain.SalesOrderStatusProcessing))

	refreshed := &domain.SalesOrder{
		SOCode:       "SO-200",
		CustomerName: "Should Not Apply",
		CompanyCode:  "ACME",
		Status:       domain.SalesOrderStatusOpen,
		OrderDate:    time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, refreshed))

	so, err := repo.GetByCode(ctx, "SO-200")
	require.NoError(t, err)
	require.Equal(t, "Test Customer", so.CustomerName)
	require.Equal(t, domain.SalesOrderStatusProcessing, so.Status)
}
