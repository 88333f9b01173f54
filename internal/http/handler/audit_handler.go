package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/mapper"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/service"
)

// AuditHandler serves the audit trail query endpoints
type AuditHandler struct {
	service *service.AuditLogService
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

// List godoc
// @Summary List audit entries
// @Tags audit
// @Produce json
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param entityType query string false "Filter by entity type"
// @Param entityCode query string false "Filter by entity code"
// @Param action query string false "Filter by action"
// @Param actorId query string false "Filter by actor"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)
	filter := repository.AuditLogFilter{
		ActorID:    r.URL.Query().Get("actorId"),
		Action:     domain.AuditAction(r.URL.Query().Get("action")),
		EntityType: r.URL.Query().Get("entityType"),
		EntityCode: r.URL.Query().Get("entityCode"),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	entries, total, err := h.service.List(r.Context(), filter, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	dtos := make([]domain.AuditLogDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, *mapper.ToAuditLogDTO(&entries[i]))
	}
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       dtos,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	})
}

// Stats godoc
// @Summary Audit entry counts per action
// @Tags audit
// @Produce json
// @Param from query string false "RFC3339 lower bound (default 30 days ago)"
// @Param to query string false "RFC3339 upper bound (default now)"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit-logs/stats [get]
func (h *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}

	stats, err := h.service.GetStats(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
