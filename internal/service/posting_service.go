package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/repository"
)

// Ledger accounts the posting engine writes against
const (
	apClearingAccountCode = "2110"
	apClearingAccountName = "Accounts Payable Clearing"
	cashAccountCode       = "1010"
	cashAccountName       = "Cash on Hand"
)

// PostingService creates the financial artifacts tied to purchase order
// approvals and payments. All methods run inside the caller's
// transaction; a posting failure rolls the whole mutation back.
type PostingService struct {
	repo      *repository.PostingRepository
	sequences *SequenceService
	logger    *zap.Logger
}

// NewPostingService creates a new PostingService
func NewPostingService(repo *repository.PostingRepository, sequences *SequenceService, logger *zap.Logger) *PostingService {
	return &PostingService{repo: repo, sequences: sequences, logger: logger}
}

// CreateAPInvoiceTx records the payable obligation for a finance-approved
// purchase order and returns its code.
func (s *PostingService) CreateAPInvoiceTx(ctx context.Context, tx *gorm.DB, po *domain.PurchaseOrder) (string, error) {
	apCode, _, err := s.sequences.NextTx(ctx, tx, domain.DocTypeAPInvoice, po.CompanyCode, po.ProjectCode)
	if err != nil {
		return "", &PostingFailureError{Stage: "ap_invoice", Err: err}
	}

	invoice := &domain.APInvoice{
		APCode:       apCode,
		POCode:       po.POCode,
		SupplierName: po.SupplierName,
		Amount:       po.TotalAmount,
		Status:       domain.APInvoiceStatusUnpaid,
		IssuedAt:     time.Now().UTC(),
	}
	if err := s.repo.WithTx(tx).CreateAPInvoice(ctx, invoice); err != nil {
		return "", &PostingFailureError{Stage: "ap_invoice", Err: err}
	}

	s.logger.Info("ap invoice posted",
		zap.String("ap_code", apCode),
		zap.String("po_code", po.POCode),
	)
	return apCode, nil
}

// CreateJournalEntryTx records the balanced journal entry for a payment:
// debit AP clearing, credit the paying bank account (or cash when the
// payment was not a bank transfer). Returns the journal code.
func (s *PostingService) CreateJournalEntryTx(ctx context.Context, tx *gorm.DB, paymentCode string, po *domain.PurchaseOrder, bank *domain.BankAccount) (string, error) {
	journalCode, _, err := s.sequences.NextTx(ctx, tx, domain.DocTypeJournal, po.CompanyCode, po.ProjectCode)
	if err != nil {
		return "", &PostingFailureError{Stage: "journal_entry", Err: err}
	}

	creditCode := cashAccountCode
	creditName := cashAccountName
	if bank != nil {
		creditCode = bank.AccountCode
		creditName = bank.BankName + " " + bank.AccountNumber
	}

	entry := &domain.JournalEntry{
		JournalCode: journalCode,
		PaymentCode: paymentCode,
		POCode:      po.POCode,
		EntryDate:   time.Now().UTC(),
		Memo:        "Payment " + paymentCode + " for " + po.POCode,
		Lines: []domain.JournalLine{
			{
				JournalCode: journalCode,
				AccountCode: apClearingAccountCode,
				AccountName: apClearingAccountName,
				Debit:       po.TotalAmount,
			},
			{
				JournalCode: journalCode,
				AccountCode: creditCode,
				AccountName: creditName,
				Credit:      po.TotalAmount,
			},
		},
	}
	if err := s.repo.WithTx(tx).CreateJournalEntry(ctx, entry); err != nil {
		return "", &PostingFailureError{Stage: "journal_entry", Err: err}
	}

	s.logger.Info("journal entry posted",
		zap.String("journal_code", journalCode),
		zap.String("payment_code", paymentCode),
	)
	return journalCode, nil
}

// MarkAPInvoicePaidTx settles the payable linked to a purchase order
func (s *PostingService) MarkAPInvoicePaidTx(ctx context.Context, tx *gorm.DB, apCode string) error {
	if apCode == "" {
		return nil
	}
	if err := s.repo.WithTx(tx).MarkAPInvoicePaid(ctx, apCode); err != nil {
		return &PostingFailureError{Stage: "ap_settlement", Err: err}
	}
	return nil
}

// GetAPInvoice loads a payable by code
func (s *PostingService) GetAPInvoice(ctx context.Context, apCode string) (*domain.APInvoice, error) {
	return s.repo.GetAPInvoiceByCode(ctx, apCode)
}

// GetJournalEntry loads a journal entry by code
func (s *PostingService) GetJournalEntry(ctx context.Context, journalCode string) (*domain.JournalEntry, error) {
	return s.repo.GetJournalEntryByCode(ctx, journalCode)
}
