package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adicipta/procure-api/internal/domain"
)

// SalesOrderFilter narrows sales order lists
type SalesOrderFilter struct {
	CompanyCode string
	Status      domain.SalesOrderStatus
	Search      string
}

// SalesOrderRepository handles sales order data access
type SalesOrderRepository struct {
	db *gorm.DB
}

// NewSalesOrderRepository creates a new SalesOrderRepository
func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SalesOrderRepository) WithTx(tx *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: tx}
}

// GetByCode loads a sales order with its lines
func (r *SalesOrderRepository) GetByCode(ctx context.Context, soCode string) (*domain.SalesOrder, error) {
	var so domain.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("so_code = ?", soCode).
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

// GetByCodeForUpdate loads a sales order header holding a row lock until
// the surrounding transaction ends. Callers must be inside a transaction.
func (r *SalesOrderRepository) GetByCodeForUpdate(ctx context.Context, soCode string) (*domain.SalesOrder, error) {
	var so domain.SalesOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("so_code = ?", soCode).
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

// GetLine loads a single demand line by its natural key
func (r *SalesOrderRepository) GetLine(ctx context.Context, soCode, itemCode, productCode string) (*domain.SalesOrderLine, error) {
	var line domain.SalesOrderLine
	err := r.db.WithContext(ctx).
		Where("so_code = ? AND item_code = ? AND product_code = ?", soCode, itemCode, productCode).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// GetLineForUpdate loads a demand line holding a row lock until the
// surrounding transaction ends. Callers must be inside a transaction.
func (r *SalesOrderRepository) GetLineForUpdate(ctx context.Context, soCode, itemCode, productCode string) (*domain.SalesOrderLine, error) {
	var line domain.SalesOrderLine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("so_code = ? AND item_code = ? AND product_code = ?", soCode, itemCode, productCode).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SumOrderedQuantity totals item quantities of non-rejected purchase
// orders raised against the sales order for the product.
func (r *SalesOrderRepository) SumOrderedQuantity(ctx context.Context, soCode, productCode string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Table("purchase_order_items").
		Select("COALESCE(SUM(purchase_order_items.quantity), 0)").
		Joins("JOIN purchase_orders ON purchase_orders.po_code = purchase_order_items.po_code").
		Where("purchase_orders.so_code = ?", soCode).
		Where("purchase_order_items.product_code = ?", productCode).
		Where("purchase_orders.status <> ?", domain.StatusRejected).
		Where("purchase_orders.deleted_at IS NULL").
		Where("purchase_order_items.deleted_at IS NULL").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateStatus moves a sales order to the given status
func (r *SalesOrderRepository) UpdateStatus(ctx context.Context, soCode string, status domain.SalesOrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.SalesOrder{}).
		Where("so_code = ?", soCode).
		Update("status", status).Error
}

// List returns a page of sales orders matching the filter
func (r *SalesOrderRepository) List(ctx context.Context, filter SalesOrderFilter, page, pageSize int, sort SortConfig) ([]domain.SalesOrder, int64, error) {
	page, pageSize = NormalizePaging(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.SalesOrder{})
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fieldMap := map[string]string{
		"soCode":       "so_code",
		"customerName": "customer_name",
		"status":       "status",
		"orderDate":    "order_date",
		"createdAt":    "created_at",
		"updatedAt":    "updated_at",
	}

	var orders []domain.SalesOrder
	err := query.
		Preload("Lines").
		Order(BuildOrderClause(sort, fieldMap, "updated_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Upsert inserts a sales order from the external source or refreshes an
// existing open one. Lines are append-only: already-known lines are
// never modified so procurement history stays consistent.
func (r *SalesOrderRepository) Upsert(ctx context.Context, incoming *domain.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.SalesOrder
		err := tx.Where("so_code = ?", incoming.SOCode).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(incoming).Error
		}
		if err != nil {
			return err
		}

		if existing.Status == domain.SalesOrderStatusOpen {
			updates := map[string]interface{}{
				"customer_name": incoming.CustomerName,
				"order_date":    incoming.OrderDate,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		}

		for i := range incoming.Lines {
			line := incoming.Lines[i]
			line.SOCode = existing.SOCode
			var count int64
			if err := tx.Model(&domain.SalesOrderLine{}).
				Where("so_code = ? AND item_code = ? AND product_code = ?",
					line.SOCode, line.ItemCode, line.ProductCode).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&line).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *SalesOrderRepository) applyFilter(query *gorm.DB, filter SalesOrderFilter) *gorm.DB {
	if filter.CompanyCode != "" {
		query = query.Where("company_code = ?", filter.CompanyCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("so_code ILIKE ? OR customer_name ILIKE ?", search, search)
	}
	return query
}
