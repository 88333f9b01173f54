package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/service"
)

// PurchaseOrderHandler serves the purchase order lifecycle endpoints
type PurchaseOrderHandler struct {
	service *service.PurchaseOrderService
	logger  *zap.Logger
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service, logger: logger}
}

// Create godoc
// @Summary Submit a purchase order
// @Description Submits a purchase order against a sales order. Quantities are checked against what previous non-rejected purchase orders already claimed.
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param request body domain.CreatePurchaseOrderRequest true "Purchase order"
// @Success 201 {object} domain.PurchaseOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error: "Bad Request", Message: "invalid JSON body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.Create(r.Context(), req, service.MetaFromRequest(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/purchase-orders/"+dto.POCode)
	respondJSON(w, http.StatusCreated, dto)
}

// Transition godoc
// @Summary Apply a lifecycle action
// @Description Applies approve_spv, approve_finance or reject to a purchase order. Finance approval also creates the payable invoice.
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Param request body domain.TransitionPurchaseOrderRequest true "Action"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode}/transition [post]
func (h *PurchaseOrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	poCode := chi.URLParam(r, "poCode")

	var req domain.TransitionPurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error: "Bad Request", Message: "invalid JSON body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	dto, err := h.service.Transition(r.Context(), poCode, req, service.MetaFromRequest(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// Get godoc
// @Summary Get a purchase order
// @Tags purchase-orders
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode} [get]
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "poCode"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// List godoc
// @Summary List purchase orders
// @Tags purchase-orders
// @Produce json
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param soCode query string false "Filter by sales order"
// @Param status query string false "Filter by status"
// @Param supplier query string false "Filter by supplier name"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)
	filter := repository.PurchaseOrderFilter{
		SOCode:      r.URL.Query().Get("soCode"),
		CompanyCode: r.URL.Query().Get("companyCode"),
		ProjectCode: r.URL.Query().Get("projectCode"),
		Status:      domain.PurchaseOrderStatus(r.URL.Query().Get("status")),
		Supplier:    r.URL.Query().Get("supplier"),
		Search:      r.URL.Query().Get("search"),
	}

	sort := repository.DefaultSortConfig()
	if field := r.URL.Query().Get("sortBy"); field != "" {
		sort = repository.SortConfig{
			Field: field,
			Order: repository.ParseSortOrder(r.URL.Query().Get("sortOrder")),
		}
	}

	orders, total, err := h.service.List(r.Context(), filter, page, pageSize, sort)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       orders,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	})
}

// AuditTrail godoc
// @Summary Get the audit trail of a purchase order
// @Tags purchase-orders
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Success 200 {array} domain.AuditLogDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode}/audit [get]
func (h *PurchaseOrderHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetAuditTrail(r.Context(), chi.URLParam(r, "poCode"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Cancel godoc
// @Summary Cancel a submitted purchase order
// @Description Soft-deletes a purchase order that has not been approved yet, releasing its claimed quantities.
// @Tags purchase-orders
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode} [delete]
func (h *PurchaseOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "poCode"), service.MetaFromRequest(r)); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
