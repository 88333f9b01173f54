package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
)

// SequenceService mints document codes from durable per-key counters
type SequenceService struct {
	repo   *repository.DocumentSequenceRepository
	logger *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(repo *repository.DocumentSequenceRepository, logger *zap.Logger) *SequenceService {
	return &SequenceService{repo: repo, logger: logger}
}

// Next allocates the next number for the sequence key in its own
// transaction and returns the formatted document code.
func (s *SequenceService) Next(ctx context.Context, docType domain.SequenceDocType, companyCode, projectCode string) (string, int, error) {
	if err := s.validateKey(docType, companyCode); err != nil {
		return "", 0, err
	}

	number, err := s.repo.NextNumber(ctx, docType, companyCode, projectCode)
	if err != nil {
		s.logger.Error("sequence allocation failed",
			zap.String("document_type", string(docType)),
			zap.String("company_code", companyCode),
			zap.Error(err),
		)
		return "", 0, fmt.Errorf("%w: %v", ErrSequenceUnavailable, err)
	}

	code := FormatDocumentCode(docType, companyCode, projectCode, number)
	s.logger.Info("document code allocated",
		zap.String("code", code),
		zap.String("document_type", string(docType)),
	)
	return code, number, nil
}

// NextTx allocates the next number inside an ambient transaction, so a
// failed caller rolls the allocation back together with its own writes.
func (s *SequenceService) NextTx(ctx context.Context, tx *gorm.DB, docType domain.SequenceDocType, companyCode, projectCode string) (string, int, error) {
	if err := s.validateKey(docType, companyCode); err != nil {
		return "", 0, err
	}
	number, err := s.repo.WithTx(tx).NextNumberTx(ctx, docType, companyCode, projectCode)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrSequenceUnavailable, err)
	}
	return FormatDocumentCode(docType, companyCode, projectCode, number), number, nil
}

func (s *SequenceService) validateKey(docType domain.SequenceDocType, companyCode string) error {
	if !docType.IsValid() {
		return fmt.Errorf("%w: unknown document type %q", ErrValidation, docType)
	}
	if companyCode == "" {
		return fmt.Errorf("%w: company code is required", ErrValidation)
	}
	return nil
}

// FormatDocumentCode renders a document code as
// PREFIX-COMPANY[-PROJECT]-NNNN with the number zero-padded to four digits.
func FormatDocumentCode(docType domain.SequenceDocType, companyCode, projectCode string, number int) string {
	prefix := domain.GetDocumentPrefix(docType)
	if projectCode != "" {
		return fmt.Sprintf("%s-%s-%s-%04d", prefix, companyCode, projectCode, number)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, companyCode, number)
}
