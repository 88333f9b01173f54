package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/service"
)

// SalesOrderHandler serves sales order reads and remaining quantities
type SalesOrderHandler struct {
	service *service.SalesOrderService
	logger  *zap.Logger
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(service *service.SalesOrderService, logger *zap.Logger) *SalesOrderHandler {
	return &SalesOrderHandler{service: service, logger: logger}
}

// Get godoc
// @Summary Get a sales order
// @Description Returns the sales order with the remaining procurable quantity per line.
// @Tags sales-orders
// @Produce json
// @Param soCode path string true "Sales order code"
// @Success 200 {object} domain.SalesOrderDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales-orders/{soCode} [get]
func (h *SalesOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "soCode"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// List godoc
// @Summary List sales orders
// @Tags sales-orders
// @Produce json
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param search query string false "Search code or customer"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales-orders [get]
func (h *SalesOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)
	filter := repository.SalesOrderFilter{
		CompanyCode: r.URL.Query().Get("companyCode"),
		Status:      domain.SalesOrderStatus(r.URL.Query().Get("status")),
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

// Remaining godoc
// @Summary Get the remaining procurable quantity of a demand line
// @Tags sales-orders
// @Produce json
// @Param soCode path string true "Sales order code"
// @Param itemCode path string true "Item code"
// @Param productCode path string true "Product code"
// @Success 200 {object} domain.RemainingQuantityDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales-orders/{soCode}/lines/{itemCode}/{productCode}/remaining [get]
func (h *SalesOrderHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.Remaining(r.Context(),
		chi.URLParam(r, "soCode"),
		chi.URLParam(r, "itemCode"),
		chi.URLParam(r, "productCode"),
	)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}
