package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
)

// RequestMeta carries request correlation data into audit entries
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// MetaFromRequest extracts audit correlation data from an HTTP request
func MetaFromRequest(r *http.Request) RequestMeta {
	if r == nil {
		return RequestMeta{}
	}
	return RequestMeta{
		RequestID: r.Header.Get("X-Request-ID"),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// LogEntry describes one auditable event
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityCode string
	OldValues  interface{}
	NewValues  interface{}
	Notes      string
	Meta       RequestMeta
}

// AuditLogService writes and queries the append-only audit trail
type AuditLogService struct {
	repo   *repository.AuditLogRepository
	logger *zap.Logger
}

// NewAuditLogService creates a new AuditLogService
func NewAuditLogService(repo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{repo: repo, logger: logger}
}

// Log appends an audit entry in its own transaction
func (s *AuditLogService) Log(ctx context.Context, entry LogEntry) error {
	return s.repo.Create(ctx, s.build(ctx, entry))
}

// LogTx appends an audit entry inside an ambient transaction, so the
// entry commits or rolls back together with the mutation it describes.
func (s *AuditLogService) LogTx(ctx context.Context, tx *gorm.DB, entry LogEntry) error {
	return s.repo.WithTx(tx).Create(ctx, s.build(ctx, entry))
}

// List returns a page of audit entries matching the filter
func (s *AuditLogService) List(ctx context.Context, filter repository.AuditLogFilter, page, pageSize int) ([]domain.AuditLog, int64, error) {
	return s.repo.List(ctx, filter, page, pageSize)
}

// GetByEntity returns the full trail of one entity, oldest first
func (s *AuditLogService) GetByEntity(ctx context.Context, entityType, entityCode string) ([]domain.AuditLog, error) {
	return s.repo.ListByEntity(ctx, entityType, entityCode)
}

// GetStats returns per-action entry counts for a time range
func (s *AuditLogService) GetStats(ctx context.Context, from, to time.Time) (map[domain.AuditAction]int64, error) {
	return s.repo.CountByAction(ctx, from, to)
}

// CleanupOldLogs deletes entries older than the retention window and
// returns how many were removed.
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("audit log retention cleanup",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}

func (s *AuditLogService) build(ctx context.Context, entry LogEntry) *domain.AuditLog {
	log := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityCode:  entry.EntityCode,
		OldValues:   marshalValues(entry.OldValues),
		NewValues:   marshalValues(entry.NewValues),
		Changes:     calculateChanges(entry.OldValues, entry.NewValues),
		Notes:       entry.Notes,
		RequestID:   entry.Meta.RequestID,
		IPAddress:   entry.Meta.IPAddress,
		UserAgent:   entry.Meta.UserAgent,
		PerformedAt: time.Now().UTC(),
	}
	if user, ok := auth.FromContext(ctx); ok {
		log.ActorID = user.UserID
		log.ActorName = user.Name
	}
	return log
}

func marshalValues(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// calculateChanges diffs old and new values field by field and renders
// only what actually changed as {"field": {"old": ..., "new": ...}}.
func calculateChanges(oldVal, newVal interface{}) string {
	if oldVal == nil || newVal == nil {
		return ""
	}
	oldMap := toMap(oldVal)
	newMap := toMap(newVal)
	if oldMap == nil || newMap == nil {
		return ""
	}

	changes := make(map[string]map[string]interface{})
	for key, newField := range newMap {
		oldField, existed := oldMap[key]
		if !existed || !reflect.DeepEqual(oldField, newField) {
			changes[key] = map[string]interface{}{"old": oldField, "new": newField}
		}
	}
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return ""
	}
	return string(data)
}

func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
