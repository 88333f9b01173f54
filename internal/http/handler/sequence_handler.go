package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/service"
)

// SequenceHandler serves direct sequence allocations
type SequenceHandler struct {
	service *service.SequenceService
	logger  *zap.Logger
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(service *service.SequenceService, logger *zap.Logger) *SequenceHandler {
	return &SequenceHandler{service: service, logger: logger}
}

// Allocate godoc
// @Summary Allocate the next document number
// @Description Mints the next code for a document sequence. Numbers are strictly increasing per (documentType, companyCode, projectCode) and never reused.
// @Tags sequences
// @Accept json
// @Produce json
// @Param request body domain.AllocateSequenceRequest true "Sequence key"
// @Success 201 {object} domain.SequenceAllocationDTO
// @Failure 400 {object} domain.APIError
// @Failure 503 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sequences/allocate [post]
func (h *SequenceHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req domain.AllocateSequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error: "Bad Request", Message: "invalid JSON body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	code, number, err := h.service.Next(r.Context(),
		domain.SequenceDocType(req.DocumentType), req.CompanyCode, req.ProjectCode)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, domain.SequenceAllocationDTO{
		Code:         code,
		Number:       number,
		DocumentType: req.DocumentType,
		CompanyCode:  req.CompanyCode,
		ProjectCode:  req.ProjectCode,
	})
}
