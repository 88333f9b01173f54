package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
)

// LookupRepository serves the read-only master data the purchasing flow
// depends on (companies and bank accounts).
type LookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a new LookupRepository
func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *LookupRepository) WithTx(tx *gorm.DB) *LookupRepository {
	return &LookupRepository{db: tx}
}

// GetCompany loads an active company by code
func (r *LookupRepository) GetCompany(ctx context.Context, companyCode string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).
		Where("company_code = ? AND is_active = ?", companyCode, true).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetBankAccount loads an active bank account by code
func (r *LookupRepository) GetBankAccount(ctx context.Context, accountCode string) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := r.db.WithContext(ctx).
		Where("account_code = ? AND is_active = ?", accountCode, true).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListBankAccounts returns all active bank accounts
func (r *LookupRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	var accounts []domain.BankAccount
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("account_code ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
