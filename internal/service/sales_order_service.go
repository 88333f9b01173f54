package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/erp"
	"github.com/adicipta/procure-api/internal/mapper"
	"github.com/adicipta/procure-api/internal/repository"
)

// ERPSalesOrderSource is the slice of the ERP client the sync needs
type ERPSalesOrderSource interface {
	FetchOpenSalesOrders(ctx context.Context) ([]erp.SalesOrderRecord, error)
	IsEnabled() bool
}

// SalesOrderService serves sales order reads and keeps local demand in
// step with the back-office ERP.
type SalesOrderService struct {
	soRepo     *repository.SalesOrderRepository
	reconciler *ReconcilerService
	source     ERPSalesOrderSource
	audit      *AuditLogService
	logger     *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	soRepo *repository.SalesOrderRepository,
	reconciler *ReconcilerService,
	source ERPSalesOrderSource,
	audit *AuditLogService,
	logger *zap.Logger,
) *SalesOrderService {
	return &SalesOrderService{
		soRepo:     soRepo,
		reconciler: reconciler,
		source:     source,
		audit:      audit,
		logger:     logger,
	}
}

// GetByCode loads a sales order with the remaining procurable quantity
// computed for each line.
func (s *SalesOrderService) GetByCode(ctx context.Context, soCode string) (*domain.SalesOrderDTO, error) {
	so, err := s.soRepo.GetByCode(ctx, soCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSalesOrderNotFound
		}
		return nil, err
	}

	dto := mapper.ToSalesOrderDTO(so)
	for i := range so.Lines {
		remaining, err := s.reconciler.Remaining(ctx, so.SOCode, so.Lines[i].ItemCode, so.Lines[i].ProductCode)
		if err != nil {
			return nil, err
		}
		dto.Lines[i].RemainingQuantity = remaining
	}
	return dto, nil
}

// List returns a page of sales orders as DTOs
func (s *SalesOrderService) List(ctx context.Context, filter repository.SalesOrderFilter, page, pageSize int, sort repository.SortConfig) ([]domain.SalesOrderDTO, int64, error) {
	orders, total, err := s.soRepo.List(ctx, filter, page, pageSize, sort)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]domain.SalesOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *mapper.ToSalesOrderDTO(&orders[i]))
	}
	return dtos, total, nil
}

// Remaining exposes the reconciler for the read endpoint
func (s *SalesOrderService) Remaining(ctx context.Context, soCode, itemCode, productCode string) (*domain.RemainingQuantityDTO, error) {
	line, err := s.soRepo.GetLine(ctx, soCode, itemCode, productCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSalesOrderLineNotFound
		}
		return nil, err
	}
	remaining, err := s.reconciler.Remaining(ctx, soCode, itemCode, productCode)
	if err != nil {
		return nil, err
	}
	return &domain.RemainingQuantityDTO{
		SOCode:      soCode,
		ItemCode:    itemCode,
		ProductCode: productCode,
		Quantity:    line.Quantity,
		Remaining:   remaining,
	}, nil
}

// SyncFromERP pulls open sales orders from the back office and upserts
// them locally. Purchase order state is never touched; existing lines
// are never modified. Returns how many orders were processed.
func (s *SalesOrderService) SyncFromERP(ctx context.Context) (int, error) {
	if s.source == nil || !s.source.IsEnabled() {
		return 0, nil
	}

	records, err := s.source.FetchOpenSalesOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching sales orders: %w", err)
	}

	synced := 0
	for _, record := range records {
		so := &domain.SalesOrder{
			SOCode:       record.SOCode,
			CustomerName: record.CustomerName,
			CompanyCode:  record.CompanyCode,
			Status:       domain.SalesOrderStatusOpen,
			OrderDate:    record.OrderDate,
		}
		for _, line := range record.Lines {
			so.Lines = append(so.Lines, domain.SalesOrderLine{
				SOCode:      record.SOCode,
				ItemCode:    line.ItemCode,
				ProductCode: line.ProductCode,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}
		if err := s.soRepo.Upsert(ctx, so); err != nil {
			s.logger.Error("sales order upsert failed",
				zap.String("so_code", record.SOCode),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	if synced > 0 {
		if err := s.audit.Log(ctx, LogEntry{
			Action:     domain.AuditActionImport,
			EntityType: "sales_order",
			EntityCode: "erp_sync",
			NewValues:  map[string]interface{}{"synced": synced, "fetched": len(records)},
			Notes:      "scheduled sales order import",
		}); err != nil {
			s.logger.Warn("could not audit erp sync", zap.Error(err))
		}
	}

	s.logger.Info("erp sales order sync completed",
		zap.Int("fetched", len(records)),
		zap.Int("synced", synced),
	)
	return synced, nil
}
