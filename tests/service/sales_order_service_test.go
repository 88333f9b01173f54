package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/erp"
	"github.com/adicipta/procure-api/internal/service"
	"github.com/adicipta/procure-api/tests/testutil"
)

// fakeERPSource feeds canned sales orders to the sync
type fakeERPSource struct {
	records []erp.SalesOrderRecord
	err     error
	enabled bool
}

func (f *fakeERPSource) FetchOpenSalesOrders(ctx context.Context) ([]erp.SalesOrderRecord, error) {
	return f.records, f.err
}

func (f *fakeERPSource) IsEnabled() bool { return f.enabled }

func TestSalesOrderGetByCodeComputesRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	submitPO(t, f, "SO-050", 4)

	so, err := f.salesOrders.GetByCode(ctx, "SO-050")
	require.NoError(t, err)
	require.Len(t, so.Lines, 1)
	require.Equal(t, 10, so.Lines[0].Quantity)
	require.Equal(t, 6, so.Lines[0].RemainingQuantity)
}

func TestSalesOrderGetByCodeNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.salesOrders.GetByCode(testContext(), "SO-MISSING")
	require.ErrorIs(t, err, service.ErrSalesOrderNotFound)
}

func TestSalesOrderRemainingEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	submitPO(t, f, "SO-051", 7)

	dto, err := f.salesOrders.Remaining(ctx, "SO-051", "ITM-1", "PRD-1")
	require.NoError(t, err)
	require.Equal(t, 10, dto.Quantity)
	require.Equal(t, 3, dto.Remaining)

	_, err = f.salesOrders.Remaining(ctx, "SO-051", "ITM-1", "PRD-MISSING")
	require.ErrorIs(t, err, service.ErrSalesOrderLineNotFound)
}

func TestSyncFromERPDisabledSource(t *testing.T) {
	f := newFixture(t)

	// Fixture wires a nil source: sync is a no-op
	synced, err := f.salesOrders.SyncFromERP(context.Background())
	require.NoError(t, err)
	require.Zero(t, synced)
}

func newSyncFixture(t *testing.T, source service.ERPSalesOrderSource) (*fixture, *service.SalesOrderService) {
	t.Helper()
	f := newFixture(t)
	svc := service.NewSalesOrderService(f.soRepo, f.reconciler, source, f.audit, testutil.NewTestLogger())
	return f, svc
}

func TestSyncFromERPUpsertsOrders(t *testing.T) {
	source := &fakeERPSource{
		enabled: true,
		records: []erp.SalesOrderRecord{
			{
				SOCode:       "SO-ERP-1",
				CustomerName: "ERP Customer",
				CompanyCode:  "ACME",
				OrderDate:    time.Now().UTC(),
				Lines: []erp.SalesOrderLineRecord{
					{ItemCode: "ITM-1", ProductCode: "PRD-1", ProductName: "Widget", Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
				},
			},
			{
				SOCode:       "SO-ERP-2",
				CustomerName: "Second Customer",
				CompanyCode:  "ACME",
				OrderDate:    time.Now().UTC(),
			},
		},
	}
	f, svc := newSyncFixture(t, source)
	ctx := context.Background()
	testutil.CreateTestCompany(t, f.db, "ACME")

	synced, err := svc.SyncFromERP(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, synced)

	so, err := f.soRepo.GetByCode(ctx, "SO-ERP-1")
	require.NoError(t, err)
	require.Equal(t, "ERP Customer", so.CustomerName)
	require.Len(t, so.Lines, 1)

	trail, err := f.audit.GetByEntity(ctx, "sales_order", "erp_sync")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	require.Equal(t, domain.AuditActionImport, trail[0].Action)
}

func TestSyncFromERPDoesNotTouchProcurementState(t *testing.T) {
	source := &fakeERPSource{enabled: true}
	f, svc := newSyncFixture(t, source)
	ctx := context.Background()

	submitPO(t, f, "SO-052", 4)

	// A refresh of the same order must not reset its status or lines
	source.records = []erp.SalesOrderRecord{{
		SOCode:       "SO-052",
		CustomerName: "Renamed In ERP",
		CompanyCode:  "ACME",
		OrderDate:    time.Now().UTC(),
		Lines: []erp.SalesOrderLineRecord{
			{ItemCode: "ITM-1", ProductCode: "PRD-1", Quantity: 99},
		},
	}}

	synced, err := svc.SyncFromERP(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, synced)

	so, err := f.soRepo.GetByCode(ctx, "SO-052")
	require.NoError(t, err)
	require.Equal(t, domain.SalesOrderStatusProcessing, so.Status)
	require.Len(t, so.Lines, 1)
	require.Equal(t, 10, so.Lines[0].Quantity, "existing demand lines are immutable")
}

func TestSyncFromERPFetchError(t *testing.T) {
	source := &fakeERPSource{enabled: true, err: errors.New("mssql unreachable")}
	_, svc := newSyncFixture(t, source)

	_, err := svc.SyncFromERP(context.Background())
	require.Error(t, err)
}
