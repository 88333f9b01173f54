package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adicipta/procure-api/internal/domain"
)

// PurchaseOrderFilter narrows purchase order lists
type PurchaseOrderFilter struct {
	SOCode      string
	CompanyCode string
	ProjectCode string
	Status      domain.PurchaseOrderStatus
	Supplier    string
	Search      string
}

// PurchaseOrderRepository handles purchase order data access
type PurchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a new PurchaseOrderRepository
func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PurchaseOrderRepository) WithTx(tx *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: tx}
}

// Create persists a purchase order together with its items
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// GetByCode loads a purchase order with its items
func (r *PurchaseOrderRepository) GetByCode(ctx context.Context, poCode string) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("po_code = ?", poCode).
		First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// GetByCodeForUpdate loads a purchase order holding a row lock until the
// surrounding transaction ends, serializing concurrent transitions.
func (r *PurchaseOrderRepository) GetByCodeForUpdate(ctx context.Context, poCode string) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("po_code = ?", poCode).
		First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// Update persists changed fields of a purchase order
func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// SoftDelete marks a purchase order and its items deleted
func (r *PurchaseOrderRepository) SoftDelete(ctx context.Context, poCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("po_code = ?", poCode).Delete(&domain.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("po_code = ?", poCode).Delete(&domain.PurchaseOrder{}).Error
	})
}

// CountActiveBySOCode counts non-rejected purchase orders against an SO
func (r *PurchaseOrderRepository) CountActiveBySOCode(ctx context.Context, soCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("so_code = ? AND status <> ?", soCode, domain.StatusRejected).
		Count(&count).Error
	return count, err
}

// List returns a page of purchase orders matching the filter
func (r *PurchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter, page, pageSize int, sort SortConfig) ([]domain.PurchaseOrder, int64, error) {
	page, pageSize = NormalizePaging(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fieldMap := map[string]string{
		"poCode":       "po_code",
		"soCode":       "so_code",
		"supplierName": "supplier_name",
		"status":       "status",
		"priority":     "priority",
		"totalAmount":  "total_amount",
		"createdAt":    "created_at",
		"updatedAt":    "updated_at",
	}

	var orders []domain.PurchaseOrder
	err := query.
		Preload("Items").
		Order(BuildOrderClause(sort, fieldMap, "updated_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PurchaseOrderRepository) applyFilter(query *gorm.DB, filter PurchaseOrderFilter) *gorm.DB {
	if filter.SOCode != "" {
		query = query.Where("so_code = ?", filter.SOCode)
	}
	if filter.CompanyCode != "" {
		query = query.Where("company_code = ?", filter.CompanyCode)
	}
	if filter.ProjectCode != "" {
		query = query.Where("project_code = ?", filter.ProjectCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Supplier != "" {
		query = query.Where("supplier_name ILIKE ?", "%"+filter.Supplier+"%")
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("po_code ILIKE ? OR supplier_name ILIKE ?", search, search)
	}
	return query
}
