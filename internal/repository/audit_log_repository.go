package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
)

// AuditLogFilter narrows audit log queries
type AuditLogFilter struct {
	ActorID    string
	Action     domain.AuditAction
	EntityType string
	EntityCode string
	From       *time.Time
	To         *time.Time
}

// AuditLogRepository handles append-only audit trail persistence
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *AuditLogRepository) WithTx(tx *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

// Create appends a single audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch appends several audit entries at once
func (r *AuditLogRepository) CreateBatch(ctx context.Context, entries []domain.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// List returns a page of audit entries matching the filter, newest first
func (r *AuditLogRepository) List(ctx context.Context, filter AuditLogFilter, page, pageSize int) ([]domain.AuditLog, int64, error) {
	page, pageSize = NormalizePaging(page, pageSize)

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.AuditLog{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []domain.AuditLog
	err := query.
		Order("performed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListByEntity returns the audit trail of one entity, oldest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType, entityCode string) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_code = ?", entityType, entityCode).
		Order("performed_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByAction groups audit entries per action for a time range
func (r *AuditLogRepository) CountByAction(ctx context.Context, from, to time.Time) (map[domain.AuditAction]int64, error) {
	type row struct {
		Action domain.AuditAction
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Select("action, COUNT(*) as count").
		Where("performed_at BETWEEN ? AND ?", from, to).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.AuditAction]int64, len(rows))
	for _, r := range rows {
		counts[r.Action] = r.Count
	}
	return counts, nil
}

// DeleteOlderThan removes audit entries performed before the cutoff and
// returns how many were deleted.
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("performed_at < ?", cutoff).
		Delete(&domain.AuditLog{})
	return res.RowsAffected, res.Error
}

func (r *AuditLogRepository) applyFilters(query *gorm.DB, filter AuditLogFilter) *gorm.DB {
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityCode != "" {
		query = query.Where("entity_code = ?", filter.EntityCode)
	}
	if filter.From != nil {
		query = query.Where("performed_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("performed_at <= ?", filter.To)
	}
	return query
}
