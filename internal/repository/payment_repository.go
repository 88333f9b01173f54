package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
)

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create persists a payment together with its documents
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByCode loads a payment with its documents
func (r *PaymentRepository) GetByCode(ctx context.Context, paymentCode string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("payment_code = ?", paymentCode).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByPOCode loads the payments recorded against a purchase order
func (r *PaymentRepository) GetByPOCode(ctx context.Context, poCode string) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("po_code = ?", poCode).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
