package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/mapper"
	"github.com/adicipta/procure-api/internal/repository"
	"github.com/adicipta/procure-api/internal/storage"
)

// DocumentUpload is one uploaded supporting document for a payment
type DocumentUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// PaymentService settles finance-approved purchase orders. Recording a
// payment mints the payment code, stores the supporting documents, moves
// the order to paid and posts the balancing journal entry, all in one
// transaction.
type PaymentService struct {
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	poRepo      *repository.PurchaseOrderRepository
	lookupRepo  *repository.LookupRepository
	sequences   *SequenceService
	posting     *PostingService
	audit       *AuditLogService
	store       storage.Storage
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	db *gorm.DB,
	paymentRepo *repository.PaymentRepository,
	poRepo *repository.PurchaseOrderRepository,
	lookupRepo *repository.LookupRepository,
	sequences *SequenceService,
	posting *PostingService,
	audit *AuditLogService,
	store storage.Storage,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		poRepo:      poRepo,
		lookupRepo:  lookupRepo,
		sequences:   sequences,
		posting:     posting,
		audit:       audit,
		store:       store,
		logger:      logger,
	}
}

// RecordPayment settles a purchase order. Documents are written to
// storage first; when the database transaction fails they are removed
// again on a best-effort basis.
func (s *PaymentService) RecordPayment(ctx context.Context, poCode string, req domain.RecordPaymentRequest, docs []DocumentUpload, meta RequestMeta) (*domain.PaymentDTO, error) {
	method := domain.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.Method)
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid payment date %q", ErrValidation, req.PaymentDate)
		}
		paymentDate = parsed
	}

	stored, err := s.storeDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}

	var paymentCode string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.WithTx(tx).GetByCodeForUpdate(ctx, poCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseOrderNotFound
			}
			return err
		}
		if po.Status == domain.StatusPaid {
			return ErrAlreadyPaid
		}
		if po.Status != domain.StatusApprovedFinance {
			return ErrNotFinanceApproved
		}

		var bank *domain.BankAccount
		if method == domain.PaymentMethodTransfer {
			if req.BankAccountCode == "" {
				return ErrBankAccountRequired
			}
			bank, err = s.lookupRepo.WithTx(tx).GetBankAccount(ctx, req.BankAccountCode)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBankAccountNotFound
				}
				return err
			}
		}

		code, _, err := s.sequences.NextTx(ctx, tx, domain.DocTypePayment, po.CompanyCode, po.ProjectCode)
		if err != nil {
			return err
		}
		paymentCode = code

		payment := &domain.Payment{
			PaymentCode:     paymentCode,
			POCode:          po.POCode,
			Amount:          po.TotalAmount,
			Method:          method,
			ReferenceNumber: req.ReferenceNumber,
			BankAccountCode: req.BankAccountCode,
			PaymentDate:     paymentDate,
			Status:          domain.PaymentStatusPaid,
			Notes:           req.Notes,
		}
		if user, ok := auth.FromContext(ctx); ok {
			payment.CreatedByID = user.UserID
			payment.CreatedByName = user.Name
		}
		for _, doc := range stored {
			doc.PaymentCode = paymentCode
			payment.Documents = append(payment.Documents, doc)
		}

		if err := s.paymentRepo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}

		journalCode, err := s.posting.CreateJournalEntryTx(ctx, tx, paymentCode, po, bank)
		if err != nil {
			return err
		}
		if err := s.posting.MarkAPInvoicePaidTx(ctx, tx, po.APCode); err != nil {
			return err
		}

		now := time.Now().UTC()
		oldStatus := po.Status
		po.Status, _ = domain.NextStatus(po.Status, domain.ActionPay)
		po.PaidAt = &now
		po.JournalCode = journalCode
		if err := s.poRepo.WithTx(tx).Update(ctx, po); err != nil {
			return err
		}

		return s.audit.LogTx(ctx, tx, LogEntry{
			Action:     domain.AuditActionPayment,
			EntityType: "purchase_order",
			EntityCode: po.POCode,
			OldValues:  map[string]interface{}{"status": oldStatus},
			NewValues:  map[string]interface{}{"status": po.Status, "payment_code": paymentCode, "journal_code": journalCode},
			Notes:      fmt.Sprintf("payment %s recorded (%s)", paymentCode, method),
			Meta:       meta,
		})
	})
	if err != nil {
		s.discardDocuments(ctx, stored)
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_code", paymentCode),
		zap.String("po_code", poCode),
		zap.String("method", string(method)),
	)
	return s.GetByCode(ctx, paymentCode)
}

// GetByCode loads a payment as a DTO
func (s *PaymentService) GetByCode(ctx context.Context, paymentCode string) (*domain.PaymentDTO, error) {
	payment, err := s.paymentRepo.GetByCode(ctx, paymentCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return mapper.ToPaymentDTO(payment), nil
}

// GetByPOCode loads the payments recorded against a purchase order
func (s *PaymentService) GetByPOCode(ctx context.Context, poCode string) ([]domain.PaymentDTO, error) {
	payments, err := s.paymentRepo.GetByPOCode(ctx, poCode)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.PaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, *mapper.ToPaymentDTO(&payments[i]))
	}
	return dtos, nil
}

func (s *PaymentService) storeDocuments(ctx context.Context, docs []DocumentUpload) ([]domain.PaymentDocument, error) {
	stored := make([]domain.PaymentDocument, 0, len(docs))
	for _, doc := range docs {
		path, size, err := s.store.Upload(ctx, doc.Filename, doc.ContentType, doc.Content)
		if err != nil {
			s.discardDocuments(ctx, stored)
			return nil, fmt.Errorf("storing document %s: %w", doc.Filename, err)
		}
		stored = append(stored, domain.PaymentDocument{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Size:        size,
			StoragePath: path,
			DocType:     ClassifyDocument(doc.Filename),
		})
	}
	return stored, nil
}

func (s *PaymentService) discardDocuments(ctx context.Context, stored []domain.PaymentDocument) {
	for _, doc := range stored {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			s.logger.Warn("could not remove orphaned document",
				zap.String("path", doc.StoragePath),
				zap.Error(err),
			)
		}
	}
}

// ClassifyDocument infers the document type from the filename. Files
// mentioning an invoice are invoices; receipts ("receipt", "bukti") and
// everything else count as proof of payment.
func ClassifyDocument(filename string) domain.PaymentDocType {
	name := strings.ToLower(filename)
	if strings.Contains(name, "invoice") {
		return domain.PaymentDocInvoice
	}
	if strings.Contains(name, "receipt") || strings.Contains(name, "bukti") {
		return domain.PaymentDocProof
	}
	return domain.PaymentDocProof
}
