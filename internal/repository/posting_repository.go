package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
)

// PostingRepository handles accounts-payable and journal persistence
type PostingRepository struct {
	db *gorm.DB
}

// NewPostingRepository creates a new PostingRepository
func NewPostingRepository(db *gorm.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PostingRepository) WithTx(tx *gorm.DB) *PostingRepository {
	return &PostingRepository{db: tx}
}

// CreateAPInvoice persists a payable
func (r *PostingRepository) CreateAPInvoice(ctx context.Context, invoice *domain.APInvoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetAPInvoiceByCode loads a payable by its code
func (r *PostingRepository) GetAPInvoiceByCode(ctx context.Context, apCode string) (*domain.APInvoice, error) {
	var invoice domain.APInvoice
	err := r.db.WithContext(ctx).Where("ap_code = ?", apCode).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkAPInvoicePaid flips a payable to paid
func (r *PostingRepository) MarkAPInvoicePaid(ctx context.Context, apCode string) error {
	return r.db.WithContext(ctx).
		Model(&domain.APInvoice{}).
		Where("ap_code = ?", apCode).
		Update("status", domain.APInvoiceStatusPaid).Error
}

// CreateJournalEntry persists a journal entry with its lines
func (r *PostingRepository) CreateJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetJournalEntryByCode loads a journal entry with its lines
func (r *PostingRepository) GetJournalEntryByCode(ctx context.Context, journalCode string) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("journal_code = ?", journalCode).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
