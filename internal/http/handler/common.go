package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/service"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		respondJSON(w, http.StatusBadRequest, domain.NewAPIError(
			domain.ErrorTypeBadRequest, "Bad Request", http.StatusBadRequest, err.Error()))
		return
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[toJSONFieldName(fe.Field())] = formatValidationError(fe)
	}
	respondJSON(w, http.StatusBadRequest, &domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "One or more fields are invalid",
		Errors: fields,
	})
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "Must be at least " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "datetime":
		return "Must be a date formatted as " + fe.Param()
	case "dive", "min":
		return "At least " + fe.Param() + " entry is required"
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

func toJSONFieldName(field string) string {
	if field == "" {
		return field
	}
	runes := []rune(field)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var quantityErr *service.QuantityExceededError
	var postingErr *service.PostingFailureError

	switch {
	case errors.As(err, &quantityErr):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error:   "Conflict",
			Message: quantityErr.Error(),
		})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNoProcurableItems),
		errors.Is(err, service.ErrRejectionReasonRequired),
		errors.Is(err, service.ErrBankAccountRequired):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrSalesOrderNotFound),
		errors.Is(err, service.ErrSalesOrderLineNotFound),
		errors.Is(err, service.ErrPurchaseOrderNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrBankAccountNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrNotFinanceApproved),
		errors.Is(err, service.ErrSalesOrderNotProcurable),
		errors.Is(err, service.ErrPurchaseOrderNotCancellable):
		respondJSON(w, http.StatusConflict, domain.ErrorResponse{
			Error:   "Conflict",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrSequenceUnavailable):
		logger.Error("sequence allocation failure", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, domain.ErrorResponse{
			Error:   "Service Unavailable",
			Message: "document numbering is temporarily unavailable",
		})
	case errors.As(err, &postingErr):
		logger.Error("posting failure", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: postingErr.Error(),
		})
	default:
		logger.Error("unhandled service error", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "an unexpected error occurred",
		})
	}
}

func parsePaging(r *http.Request) (int, int) {
	page := 1
	pageSize := 20
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
