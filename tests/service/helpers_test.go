package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/service"
	"github.com/adicipta/procure-api/internal/storage"
	"github.com/adicipta/procure-api/tests/testutil"
)

// fixture wires the full service graph over a throwaway database
type fixture struct {
	db             *gorm.DB
	soRepo         *repository.SalesOrderRepository
	poRepo         *repository.PurchaseOrderRepository
	store          storage.Storage
	sequences      *service.SequenceService
	reconciler     *service.ReconcilerService
	audit          *service.AuditLogService
	posting        *service.PostingService
	purchaseOrders *service.PurchaseOrderService
	payments       *service.PaymentService
	salesOrders    *service.SalesOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := testutil.NewTestLogger()

	store, err := storage.NewLocalStorage(t.TempDir(), logger)
	require.NoError(t, err)

	soRepo := repository.NewSalesOrderRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	postingRepo := repository.NewPostingRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	seqRepo := repository.NewDocumentSequenceRepository(db)

	audit := service.NewAuditLogService(auditRepo, logger)
	sequences := service.NewSequenceService(seqRepo, logger)
	reconciler := service.NewReconcilerService(soRepo, logger)
	posting := service.NewPostingService(postingRepo, sequences, logger)

	return &fixture{
		db:         db,
		soRepo:     soRepo,
		poRepo:     poRepo,
		store:      store,
		sequences:  sequences,
		reconciler: reconciler,
		audit:      audit,
		posting:    posting,
		purchaseOrders: service.NewPurchaseOrderService(
			db, poRepo, soRepo, reconciler, sequences, posting, audit, logger),
		payments: service.NewPaymentService(
			db, paymentRepo, poRepo, lookupRepo, sequences, posting, audit, store, logger),
		salesOrders: service.NewSalesOrderService(soRepo, reconciler, nil, audit, logger),
	}
}

func testContext() context.Context {
	return testutil.ContextWithUser("user-1", "Test User", domain.RolePurchasing, domain.RoleFinance)
}

func testMeta() service.RequestMeta {
	return service.RequestMeta{RequestID: "req-1", IPAddress: "10.0.0.1", UserAgent: "tests"}
}

// submitPO creates a sales order with one 10-piece line and submits a
// purchase order for the given quantity against it.
func submitPO(t *testing.T, f *fixture, soCode string, quantity int) *domain.PurchaseOrderDTO {
	t.Helper()

	testutil.CreateTestSalesOrder(t, f.db, soCode, "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))

	po, err := f.purchaseOrders.Create(testContext(), domain.CreatePurchaseOrderRequest{
		SOCode:       soCode,
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: quantity, PurchasePrice: decimal.NewFromInt(25)},
		},
	}, testMeta())
	require.NoError(t, err)
	return po
}

// approveToFinance walks a submitted purchase order to approved_finance
func approveToFinance(t *testing.T, f *fixture, poCode string) *domain.PurchaseOrderDTO {
	t.Helper()

	_, err := f.purchaseOrders.Transition(testContext(), poCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveSpv)}, testMeta())
	require.NoError(t, err)

	po, err := f.purchaseOrders.Transition(testContext(), poCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveFinance)}, testMeta())
	require.NoError(t, err)
	return po
}
