package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/domain"
)

// DocumentSequenceRepository allocates strictly increasing document
// numbers from the document_sequences counter table.
type DocumentSequenceRepository struct {
	db *gorm.DB
}

// NewDocumentSequenceRepository creates a new DocumentSequenceRepository
func NewDocumentSequenceRepository(db *gorm.DB) *DocumentSequenceRepository {
	return &DocumentSequenceRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *DocumentSequenceRepository) WithTx(tx *gorm.DB) *DocumentSequenceRepository {
	return &DocumentSequenceRepository{db: tx}
}

// NextNumber increments and returns the counter for the sequence key in
// its own transaction.
func (r *DocumentSequenceRepository) NextNumber(ctx context.Context, docType domain.SequenceDocType, companyCode, projectCode string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := r.WithTx(tx).NextNumberTx(ctx, docType, companyCode, projectCode)
		if err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// NextNumberTx increments the counter inside an ambient transaction.
// The increment is a single atomic UPDATE that locks the counter row
// until the transaction ends, so concurrent allocators serialize and
// never see the same number. The first allocation for a key goes
// through an insert; losing the insert race falls back to the UPDATE.
func (r *DocumentSequenceRepository) NextNumberTx(ctx context.Context, docType domain.SequenceDocType, companyCode, projectCode string) (int, error) {
	db := r.db.WithContext(ctx)

	res := r.increment(db, docType, companyCode, projectCode)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		seq := domain.DocumentSequence{
			DocumentType: docType,
			CompanyCode:  companyCode,
			ProjectCode:  projectCode,
			LastValue:    1,
		}
		if err := db.Create(&seq).Error; err == nil {
			return 1, nil
		}
		// Another allocator inserted the row first; take the update path
		res = r.increment(db, docType, companyCode, projectCode)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, gorm.ErrRecordNotFound
		}
	}

	var seq domain.DocumentSequence
	if err := db.
		Where("document_type = ? AND company_code = ? AND project_code = ?", docType, companyCode, projectCode).
		First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

func (r *DocumentSequenceRepository) increment(db *gorm.DB, docType domain.SequenceDocType, companyCode, projectCode string) *gorm.DB {
	return db.Model(&domain.DocumentSequence{}).
		Where("document_type = ? AND company_code = ? AND project_code = ?", docType, companyCode, projectCode).
		UpdateColumn("last_value", gorm.Expr("last_value + 1"))
}
