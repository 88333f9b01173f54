package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
)

// ReconcilerService computes how much of a sales order line is still
// procurable and guards purchase order submissions against over-ordering.
type ReconcilerService struct {
	soRepo *repository.SalesOrderRepository
	logger *zap.Logger
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(soRepo *repository.SalesOrderRepository, logger *zap.Logger) *ReconcilerService {
	return &ReconcilerService{soRepo: soRepo, logger: logger}
}

// Remaining returns the demand quantity minus everything already staked
// out by non-rejected purchase orders, clamped at zero.
func (s *ReconcilerService) Remaining(ctx context.Context, soCode, itemCode, productCode string) (int, error) {
	line, err := s.soRepo.GetLine(ctx, soCode, itemCode, productCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSalesOrderLineNotFound
		}
		return 0, err
	}
	return s.remainingForLine(ctx, s.soRepo, line)
}

// ValidateRequest checks the requested lines against remaining
// quantities inside the given transaction, locking each demand line so
// concurrent submissions serialize. Zero-quantity lines are dropped.
// The returned slice contains only the lines that should be persisted.
func (s *ReconcilerService) ValidateRequest(ctx context.Context, tx *gorm.DB, soCode string, items []domain.CreatePurchaseOrderItemRequest) ([]domain.CreatePurchaseOrderItemRequest, error) {
	repo := s.soRepo.WithTx(tx)

	kept := make([]domain.CreatePurchaseOrderItemRequest, 0, len(items))
	staked := make(map[string]int, len(items))

	for _, item := range items {
		if item.Quantity == 0 {
			continue
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity for product %s", ErrValidation, item.ProductCode)
		}

		line, err := repo.GetLineForUpdate(ctx, soCode, item.ItemCode, item.ProductCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s/%s on %s", ErrSalesOrderLineNotFound, item.ItemCode, item.ProductCode, soCode)
			}
			return nil, err
		}

		remaining, err := s.remainingForLine(ctx, repo, line)
		if err != nil {
			return nil, err
		}

		key := item.ItemCode + "/" + item.ProductCode
		remaining -= staked[key]
		if remaining < 0 {
			remaining = 0
		}
		if item.Quantity > remaining {
			return nil, &QuantityExceededError{
				ProductCode: item.ProductCode,
				Requested:   item.Quantity,
				Remaining:   remaining,
			}
		}
		staked[key] += item.Quantity
		kept = append(kept, item)
	}

	if len(kept) == 0 {
		return nil, ErrNoProcurableItems
	}
	return kept, nil
}

func (s *ReconcilerService) remainingForLine(ctx context.Context, repo *repository.SalesOrderRepository, line *domain.SalesOrderLine) (int, error) {
	ordered, err := repo.SumOrderedQuantity(ctx, line.SOCode, line.ProductCode)
	if err != nil {
		return 0, err
	}
	remaining := line.Quantity - ordered
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
