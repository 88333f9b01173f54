package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/service"
)

// Multipart uploads are capped at 32 MiB in memory
const maxUploadMemory = 32 << 20

// PaymentHandler serves the payment recording endpoints
type PaymentHandler struct {
	service *service.PaymentService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// Record godoc
// @Summary Record a payment
// @Description Settles a finance-approved purchase order. Accepts multipart form data with the payment fields and zero or more supporting documents under the "documents" field.
// @Tags payments
// @Accept mpfd
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Param method formData string true "transfer, cash or cheque"
// @Param referenceNumber formData string false "Bank or cheque reference"
// @Param bankAccountCode formData string false "Bank account (required for transfers)"
// @Param paymentDate formData string false "Payment date (YYYY-MM-DD)"
// @Param notes formData string false "Notes"
// @Param documents formData file false "Supporting documents"
// @Success 201 {object} domain.PaymentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode}/payments [post]
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	poCode := chi.URLParam(r, "poCode")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error: "Bad Request", Message: "invalid multipart form"})
		return
	}

	req := domain.RecordPaymentRequest{
		Method:          r.FormValue("method"),
		ReferenceNumber: r.FormValue("referenceNumber"),
		BankAccountCode: r.FormValue("bankAccountCode"),
		PaymentDate:     r.FormValue("paymentDate"),
		Notes:           r.FormValue("notes"),
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	var docs []service.DocumentUpload
	var openFiles []interface{ Close() error }
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["documents"] {
			file, err := header.Open()
			if err != nil {
				respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
					Error: "Bad Request", Message: "could not read uploaded file " + header.Filename})
				return
			}
			openFiles = append(openFiles, file)
			docs = append(docs, service.DocumentUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Content:     file,
			})
		}
	}

	dto, err := h.service.RecordPayment(r.Context(), poCode, req, docs, service.MetaFromRequest(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/payments/"+dto.PaymentCode)
	respondJSON(w, http.StatusCreated, dto)
}

// Get godoc
// @Summary Get a payment
// @Tags payments
// @Produce json
// @Param paymentCode path string true "Payment code"
// @Success 200 {object} domain.PaymentDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /payments/{paymentCode} [get]
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "paymentCode"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// ListByPurchaseOrder godoc
// @Summary List payments of a purchase order
// @Tags payments
// @Produce json
// @Param poCode path string true "Purchase order code"
// @Success 200 {array} domain.PaymentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{poCode}/payments [get]
func (h *PaymentHandler) ListByPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.GetByPOCode(r.Context(), chi.URLParam(r, "poCode"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}
