package service_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/service"
	"github.com/adicipta/procure-api/tests/testutil"
)

func TestCreatePurchaseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	testutil.CreateTestSalesOrder(t, f.db, "SO-001", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10),
		testutil.TestLine("ITM-2", "PRD-2", 5))

	po, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-001",
		SupplierName: "Acme Supplies",
		Priority:     string(domain.PriorityHigh),
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 4, PurchasePrice: decimal.NewFromInt(25)},
			{ItemCode: "ITM-2", ProductCode: "PRD-2", Quantity: 5, PurchasePrice: decimal.NewFromInt(10)},
		},
	}, testMeta())
	require.NoError(t, err)

	require.Equal(t, "PO-ACME-0001", po.POCode)
	require.Equal(t, string(domain.StatusSubmitted), po.Status)
	require.Equal(t, string(domain.PriorityHigh), po.Priority)
	require.Equal(t, "Test User", po.SubmittedByName)
	require.Len(t, po.Items, 2)
	require.Equal(t, "PO-ACME-0001-01", po.Items[0].POItemCode)
	require.True(t, po.TotalAmount.Equal(decimal.NewFromInt(150)), "total = 4*25 + 5*10, got %s", po.TotalAmount)

	// First purchase order moves the sales order into processing
	so, err := f.soRepo.GetByCode(ctx, "SO-001")
	require.NoError(t, err)
	require.Equal(t, domain.SalesOrderStatusProcessing, so.Status)

	soTrail, err := f.audit.GetByEntity(ctx, "sales_order", "SO-001")
	require.NoError(t, err)
	require.Len(t, soTrail, 1)
	require.Equal(t, domain.AuditActionStatusChange, soTrail[0].Action)

	poTrail, err := f.purchaseOrders.GetAuditTrail(ctx, po.POCode)
	require.NoError(t, err)
	require.Len(t, poTrail, 1)
	require.Equal(t, string(domain.AuditActionCreate), poTrail[0].Action)
	require.Equal(t, "user-1", poTrail[0].ActorID)
	require.Equal(t, "req-1", poTrail[0].RequestID)
}

func TestCreateSecondPurchaseOrderGetsNextNumber(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	first := submitPO(t, f, "SO-002", 4)
	require.Equal(t, "PO-ACME-0001", first.POCode)

	second, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-002",
		SupplierName: "Other Supplier",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 3, PurchasePrice: decimal.NewFromInt(20)},
		},
	}, testMeta())
	require.NoError(t, err)
	require.Equal(t, "PO-ACME-0002", second.POCode)

	// Already processing: no second sales order status flip
	trail, err := f.audit.GetByEntity(ctx, "sales_order", "SO-002")
	require.NoError(t, err)
	require.Len(t, trail, 1)
}

func TestCreateRejectsOverOrder(t *testing.T) {
	f := newFixture(t)

	testutil.CreateTestSalesOrder(t, f.db, "SO-003", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))

	_, err := f.purchaseOrders.Create(testContext(), domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-003",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 11, PurchasePrice: decimal.NewFromInt(25)},
		},
	}, testMeta())

	var qtyErr *service.QuantityExceededError
	require.ErrorAs(t, err, &qtyErr)
	require.Equal(t, "PRD-1", qtyErr.ProductCode)
	require.Equal(t, 11, qtyErr.Requested)
	require.Equal(t, 10, qtyErr.Remaining)

	// Nothing committed: the sales order is still open
	so, err := f.soRepo.GetByCode(testContext(), "SO-003")
	require.NoError(t, err)
	require.Equal(t, domain.SalesOrderStatusOpen, so.Status)
}

func TestCreateDropsZeroQuantityLines(t *testing.T) {
	f := newFixture(t)

	testutil.CreateTestSalesOrder(t, f.db, "SO-004", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10),
		testutil.TestLine("ITM-2", "PRD-2", 5))

	po, err := f.purchaseOrders.Create(testContext(), domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-004",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 0, PurchasePrice: decimal.NewFromInt(25)},
			{ItemCode: "ITM-2", ProductCode: "PRD-2", Quantity: 3, PurchasePrice: decimal.NewFromInt(10)},
		},
	}, testMeta())
	require.NoError(t, err)
	require.Len(t, po.Items, 1)
	require.Equal(t, "PRD-2", po.Items[0].ProductCode)
}

func TestCreateAllZeroQuantitiesFails(t *testing.T) {
	f := newFixture(t)

	testutil.CreateTestSalesOrder(t, f.db, "SO-005", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))

	_, err := f.purchaseOrders.Create(testContext(), domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-005",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 0},
		},
	}, testMeta())
	require.ErrorIs(t, err, service.ErrNoProcurableItems)
}

func TestCreateUnknownSalesOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.purchaseOrders.Create(testContext(), domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-MISSING",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 1},
		},
	}, testMeta())
	require.ErrorIs(t, err, service.ErrSalesOrderNotFound)
}

func TestCreateAgainstFulfilledSalesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	testutil.CreateTestSalesOrder(t, f.db, "SO-006", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))
	require.NoError(t, f.soRepo.UpdateStatus(ctx, "SO-006", domain.SalesOrderStatusFulfilled))

	_, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-006",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 1},
		},
	}, testMeta())
	require.ErrorIs(t, err, service.ErrSalesOrderNotProcurable)
}

func TestCreateAgainstCancelledSalesOrderFails(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	// Cancelled after creation: the in-transaction status check must see it
	testutil.CreateTestSalesOrder(t, f.db, "SO-007", "ACME",
		testutil.TestLine("ITM-1", "PRD-1", 10))
	require.NoError(t, f.soRepo.UpdateStatus(ctx, "SO-007", domain.SalesOrderStatusCancelled))

	_, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-007",
		SupplierName: "Acme Supplies",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 1},
		},
	}, testMeta())
	require.ErrorIs(t, err, service.ErrSalesOrderNotProcurable)
}

func TestTransitionApproveSpv(t *testing.T) {
	f := newFixture(t)

	created := submitPO(t, f, "SO-010", 4)

	po, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveSpv)}, testMeta())
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusApprovedSpv), po.Status)
	require.Equal(t, "Test User", po.SpvApprovedBy)
	require.NotNil(t, po.SpvApprovedAt)
	require.Empty(t, po.APCode, "no payable before finance approval")
}

func TestTransitionRecordsApprovalNotes(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-020", 4)

	po, err := f.purchaseOrders.Transition(ctx, created.POCode,
		domain.TransitionPurchaseOrderRequest{
			Action: string(domain.ActionApproveSpv),
			Notes:  "checked against contract CTR-9",
		}, testMeta())
	require.NoError(t, err)
	require.Equal(t, "checked against contract CTR-9", po.ApprovalNotes)

	trail, err := f.purchaseOrders.GetAuditTrail(ctx, created.POCode)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	require.Contains(t, trail[1].Notes, "checked against contract CTR-9")
}

func TestTransitionApproveFinanceCreatesAPInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-011", 4)
	po := approveToFinance(t, f, created.POCode)

	require.Equal(t, string(domain.StatusApprovedFinance), po.Status)
	require.Equal(t, "AP-ACME-0001", po.APCode)

	invoice, err := f.posting.GetAPInvoice(ctx, po.APCode)
	require.NoError(t, err)
	require.Equal(t, created.POCode, invoice.POCode)
	require.Equal(t, domain.APInvoiceStatusUnpaid, invoice.Status)
	require.True(t, invoice.Amount.Equal(created.TotalAmount))
}

func TestTransitionFinanceBeforeSupervisorFails(t *testing.T) {
	f := newFixture(t)

	created := submitPO(t, f, "SO-012", 4)

	_, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveFinance)}, testMeta())
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestTransitionRejectRequiresReason(t *testing.T) {
	f := newFixture(t)

	created := submitPO(t, f, "SO-013", 4)

	_, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionReject)}, testMeta())
	require.ErrorIs(t, err, service.ErrRejectionReasonRequired)

	po, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{
			Action: string(domain.ActionReject),
			Reason: "supplier blacklisted",
		}, testMeta())
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusRejected), po.Status)
	require.Equal(t, "supplier blacklisted", po.RejectionReason)
	require.Equal(t, "Test User", po.RejectedBy)
}

func TestTransitionRejectedIsTerminal(t *testing.T) {
	f := newFixture(t)

	created := submitPO(t, f, "SO-014", 4)
	_, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionReject), Reason: "too expensive"}, testMeta())
	require.NoError(t, err)

	_, err = f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveSpv)}, testMeta())
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestTransitionPayActionNotAccepted(t *testing.T) {
	f := newFixture(t)

	created := submitPO(t, f, "SO-015", 4)

	_, err := f.purchaseOrders.Transition(testContext(), created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionPay)}, testMeta())
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestTransitionUnknownPurchaseOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.purchaseOrders.Transition(testContext(), "PO-MISSING",
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveSpv)}, testMeta())
	require.ErrorIs(t, err, service.ErrPurchaseOrderNotFound)
}

func TestRejectionReleasesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-016", 10)

	// The full demand is claimed, a second order must fail
	_, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-016",
		SupplierName: "Backup Supplier",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 1, PurchasePrice: decimal.NewFromInt(30)},
		},
	}, testMeta())
	var qtyErr *service.QuantityExceededError
	require.True(t, errors.As(err, &qtyErr))

	_, err = f.purchaseOrders.Transition(ctx, created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionReject), Reason: "wrong supplier"}, testMeta())
	require.NoError(t, err)

	// Rejection frees the quantity for a replacement order
	replacement, err := f.purchaseOrders.Create(ctx, domain.CreatePurchaseOrderRequest{
		SOCode:       "SO-016",
		SupplierName: "Backup Supplier",
		Items: []domain.CreatePurchaseOrderItemRequest{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 10, PurchasePrice: decimal.NewFromInt(30)},
		},
	}, testMeta())
	require.NoError(t, err)
	require.Equal(t, "PO-ACME-0002", replacement.POCode)
}

func TestCancelSubmittedPurchaseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-017", 4)

	require.NoError(t, f.purchaseOrders.Cancel(ctx, created.POCode, testMeta()))

	_, err := f.purchaseOrders.GetByCode(ctx, created.POCode)
	require.ErrorIs(t, err, service.ErrPurchaseOrderNotFound)

	// Cancellation releases the claimed quantity as well
	remaining, err := f.reconciler.Remaining(ctx, "SO-017", "ITM-1", "PRD-1")
	require.NoError(t, err)
	require.Equal(t, 10, remaining)
}

func TestCancelApprovedPurchaseOrderFails(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-018", 4)
	_, err := f.purchaseOrders.Transition(ctx, created.POCode,
		domain.TransitionPurchaseOrderRequest{Action: string(domain.ActionApproveSpv)}, testMeta())
	require.NoError(t, err)

	err = f.purchaseOrders.Cancel(ctx, created.POCode, testMeta())
	require.ErrorIs(t, err, service.ErrPurchaseOrderNotCancellable)
}

func TestGetAuditTrailFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	created := submitPO(t, f, "SO-019", 4)
	approveToFinance(t, f, created.POCode)

	trail, err := f.purchaseOrders.GetAuditTrail(ctx, created.POCode)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	require.Equal(t, string(domain.AuditActionCreate), trail[0].Action)
	require.Equal(t, string(domain.AuditActionStatusChange), trail[1].Action)
	require.Equal(t, string(domain.AuditActionStatusChange), trail[2].Action)
}
