package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (e.g. sqlite in tests)
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Company represents a legal entity purchase orders are issued under
type Company struct {
	CompanyCode string    `gorm:"type:varchar(20);primaryKey;column:company_code" json:"companyCode"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BankAccount represents a company bank account payments are drawn from
type BankAccount struct {
	AccountCode   string    `gorm:"type:varchar(50);primaryKey;column:account_code" json:"accountCode"`
	BankName      string    `gorm:"type:varchar(100);not null;column:bank_name" json:"bankName"`
	AccountNumber string    `gorm:"type:varchar(50);not null;column:account_number" json:"accountNumber"`
	AccountHolder string    `gorm:"type:varchar(200);column:account_holder" json:"accountHolder"`
	IsActive      bool      `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// SalesOrderStatus represents the fulfilment status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusOpen       SalesOrderStatus = "open"
	SalesOrderStatusProcessing SalesOrderStatus = "processing"
	SalesOrderStatusFulfilled  SalesOrderStatus = "fulfilled"
	SalesOrderStatusCancelled  SalesOrderStatus = "cancelled"
)

// IsValid checks if the SalesOrderStatus is a valid enum value
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusOpen, SalesOrderStatusProcessing, SalesOrderStatusFulfilled, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// SalesOrder represents a customer demand that purchase orders procure against
type SalesOrder struct {
	BaseModel
	SOCode       string           `gorm:"type:varchar(50);not null;uniqueIndex;column:so_code"`
	CustomerName string           `gorm:"type:varchar(200);not null;column:customer_name"`
	CompanyCode  string           `gorm:"type:varchar(20);not null;index;column:company_code"`
	Company      *Company         `gorm:"foreignKey:CompanyCode;references:CompanyCode"`
	Status       SalesOrderStatus `gorm:"type:varchar(50);not null;default:'open';index"`
	OrderDate    time.Time        `gorm:"type:date;not null;column:order_date"`
	Lines        []SalesOrderLine `gorm:"foreignKey:SOCode;references:SOCode"`
	DeletedAt    gorm.DeletedAt   `gorm:"index"`
}

// SalesOrderLine is an immutable demand line on a sales order.
// A line is addressed by (so_code, item_code, product_code).
type SalesOrderLine struct {
	BaseModel
	SOCode      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_so_line_key;column:so_code"`
	ItemCode    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_so_line_key;column:item_code"`
	ProductCode string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_so_line_key;column:product_code"`
	ProductName string          `gorm:"type:varchar(200);column:product_name"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
}

// PurchaseOrderPriority represents the urgency of a purchase order
type PurchaseOrderPriority string

const (
	PriorityLow    PurchaseOrderPriority = "low"
	PriorityMedium PurchaseOrderPriority = "medium"
	PriorityHigh   PurchaseOrderPriority = "high"
)

// IsValid checks if the PurchaseOrderPriority is a valid enum value
func (p PurchaseOrderPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PurchaseOrder represents a procurement request raised against a sales order
type PurchaseOrder struct {
	BaseModel
	POCode            string                `gorm:"type:varchar(50);not null;uniqueIndex;column:po_code"`
	SOCode            string                `gorm:"type:varchar(50);not null;index;column:so_code"`
	SupplierName      string                `gorm:"type:varchar(200);not null;column:supplier_name"`
	Status            PurchaseOrderStatus   `gorm:"type:varchar(50);not null;default:'submitted';index"`
	Priority          PurchaseOrderPriority `gorm:"type:varchar(20);not null;default:'medium'"`
	TotalAmount       decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	CompanyCode       string                `gorm:"type:varchar(20);not null;index;column:company_code"`
	ProjectCode       string                `gorm:"type:varchar(50);not null;default:'';column:project_code"`
	Notes             string                `gorm:"type:text"`
	SubmittedByID     string                `gorm:"type:varchar(100);not null;column:submitted_by_id"`
	SubmittedByName   string                `gorm:"type:varchar(200);column:submitted_by_name"`
	SpvApprovedBy     string                `gorm:"type:varchar(200);column:spv_approved_by"`
	SpvApprovedAt     *time.Time            `gorm:"column:spv_approved_at"`
	FinanceApprovedBy string                `gorm:"type:varchar(200);column:finance_approved_by"`
	FinanceApprovedAt *time.Time            `gorm:"column:finance_approved_at"`
	ApprovalNotes     string                `gorm:"type:varchar(500);column:approval_notes"`
	RejectedBy        string                `gorm:"type:varchar(200);column:rejected_by"`
	RejectedAt        *time.Time            `gorm:"column:rejected_at"`
	RejectionReason   string                `gorm:"type:varchar(500);column:rejection_reason"`
	PaidAt            *time.Time            `gorm:"column:paid_at"`
	APCode            string                `gorm:"type:varchar(50);column:ap_code"`
	JournalCode       string                `gorm:"type:varchar(50);column:journal_code"`
	Items             []PurchaseOrderItem   `gorm:"foreignKey:POCode;references:POCode"`
	DeletedAt         gorm.DeletedAt        `gorm:"index"`
}

// PurchaseOrderItem is a procurement line on a purchase order
type PurchaseOrderItem struct {
	BaseModel
	POItemCode    string          `gorm:"type:varchar(60);not null;uniqueIndex;column:po_item_code"`
	POCode        string          `gorm:"type:varchar(50);not null;index;column:po_code"`
	ProductCode   string          `gorm:"type:varchar(50);not null;index;column:product_code"`
	ProductName   string          `gorm:"type:varchar(200);column:product_name"`
	Quantity      int             `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:purchase_price"`
	DeletedAt     gorm.DeletedAt  `gorm:"index"`
}

// Subtotal returns quantity times purchase price for the line
func (i *PurchaseOrderItem) Subtotal() decimal.Decimal {
	return i.PurchasePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentMethod represents how a payment was settled
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCheque   PaymentMethod = "cheque"
)

// IsValid checks if the PaymentMethod is a valid enum value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodCheque:
		return true
	}
	return false
}

// PaymentStatus represents the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "paid"
	PaymentStatusVoid PaymentStatus = "void"
)

// Payment represents the settlement of a finance-approved purchase order
type Payment struct {
	BaseModel
	PaymentCode     string            `gorm:"type:varchar(50);not null;uniqueIndex;column:payment_code"`
	POCode          string            `gorm:"type:varchar(50);not null;index;column:po_code"`
	Amount          decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	Method          PaymentMethod     `gorm:"type:varchar(20);not null"`
	ReferenceNumber string            `gorm:"type:varchar(100);column:reference_number"`
	BankAccountCode string            `gorm:"type:varchar(50);column:bank_account_code"`
	PaymentDate     time.Time         `gorm:"type:date;not null;column:payment_date"`
	Status          PaymentStatus     `gorm:"type:varchar(20);not null;default:'paid'"`
	Notes           string            `gorm:"type:text"`
	CreatedByID     string            `gorm:"type:varchar(100);column:created_by_id"`
	CreatedByName   string            `gorm:"type:varchar(200);column:created_by_name"`
	Documents       []PaymentDocument `gorm:"foreignKey:PaymentCode;references:PaymentCode"`
}

// PaymentDocType classifies an uploaded payment document
type PaymentDocType string

const (
	PaymentDocInvoice PaymentDocType = "invoice"
	PaymentDocProof   PaymentDocType = "proof"
)

// PaymentDocument is a stored supporting document for a payment.
// Only the storage path and inferred type are persisted; the bytes live
// in the configured storage backend.
type PaymentDocument struct {
	BaseModel
	PaymentCode string         `gorm:"type:varchar(50);not null;index;column:payment_code"`
	Filename    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100);column:content_type"`
	Size        int64          `gorm:"not null;default:0"`
	StoragePath string         `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	DocType     PaymentDocType `gorm:"type:varchar(20);not null;default:'proof';column:doc_type"`
}

// APInvoiceStatus represents the settlement status of a payable
type APInvoiceStatus string

const (
	APInvoiceStatusUnpaid APInvoiceStatus = "unpaid"
	APInvoiceStatusPaid   APInvoiceStatus = "paid"
)

// APInvoice is the accounts-payable obligation created on finance approval
type APInvoice struct {
	BaseModel
	APCode       string          `gorm:"type:varchar(50);not null;uniqueIndex;column:ap_code"`
	POCode       string          `gorm:"type:varchar(50);not null;index;column:po_code"`
	SupplierName string          `gorm:"type:varchar(200);not null;column:supplier_name"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status       APInvoiceStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	IssuedAt     time.Time       `gorm:"not null;column:issued_at"`
}

// JournalEntry is a balanced double-entry record created on payment
type JournalEntry struct {
	BaseModel
	JournalCode string        `gorm:"type:varchar(50);not null;uniqueIndex;column:journal_code"`
	PaymentCode string        `gorm:"type:varchar(50);not null;index;column:payment_code"`
	POCode      string        `gorm:"type:varchar(50);not null;index;column:po_code"`
	EntryDate   time.Time     `gorm:"type:date;not null;column:entry_date"`
	Memo        string        `gorm:"type:varchar(500)"`
	Lines       []JournalLine `gorm:"foreignKey:JournalCode;references:JournalCode"`
}

// JournalLine is a single debit or credit leg of a journal entry
type JournalLine struct {
	BaseModel
	JournalCode string          `gorm:"type:varchar(50);not null;index;column:journal_code"`
	AccountCode string          `gorm:"type:varchar(50);not null;column:account_code"`
	AccountName string          `gorm:"type:varchar(200);column:account_name"`
	Debit       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Credit      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// SequenceDocType identifies which document family a sequence numbers
type SequenceDocType string

const (
	DocTypePurchaseOrder SequenceDocType = "purchase_order"
	DocTypePayment       SequenceDocType = "payment"
	DocTypeAPInvoice     SequenceDocType = "ap_invoice"
	DocTypeJournal       SequenceDocType = "journal"
)

// IsValid checks if the SequenceDocType is a valid enum value
func (d SequenceDocType) IsValid() bool {
	switch d {
	case DocTypePurchaseOrder, DocTypePayment, DocTypeAPInvoice, DocTypeJournal:
		return true
	}
	return false
}

// GetDocumentPrefix returns the code prefix for a document type
func GetDocumentPrefix(docType SequenceDocType) string {
	switch docType {
	case DocTypePurchaseOrder:
		return "PO"
	case DocTypePayment:
		return "PAY"
	case DocTypeAPInvoice:
		return "AP"
	case DocTypeJournal:
		return "JRN"
	default:
		return "DOC"
	}
}

// DocumentSequence is the durable counter behind document numbering.
// One row per (document_type, company_code, project_code); project_code
// is stored as the empty string for sequences not scoped to a project.
type DocumentSequence struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	DocumentType SequenceDocType `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_sequences_key;column:document_type"`
	CompanyCode  string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_document_sequences_key;column:company_code"`
	ProjectCode  string          `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_document_sequences_key;column:project_code"`
	LastValue    int             `gorm:"not null;default:0;column:last_value"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RolePurchasing UserRoleType = "purchasing"
	RoleSupervisor UserRoleType = "supervisor"
	RoleFinance    UserRoleType = "finance"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionPayment      AuditAction = "payment"
	AuditActionPosting      AuditAction = "posting"
	AuditActionDelete       AuditAction = "delete"
	AuditActionImport       AuditAction = "import"
)

// AuditLog represents an append-only audit trail entry.
// Entries are written in the same transaction as the mutation they
// describe and are never updated afterwards.
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key"`
	ActorID     string      `gorm:"type:varchar(100);column:actor_id"`
	ActorName   string      `gorm:"type:varchar(200);column:actor_name"`
	Action      AuditAction `gorm:"type:varchar(50);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;index:idx_audit_entity;column:entity_type"`
	EntityCode  string      `gorm:"type:varchar(50);not null;index:idx_audit_entity;column:entity_code"`
	OldValues   string      `gorm:"type:jsonb;column:old_values"`
	NewValues   string      `gorm:"type:jsonb;column:new_values"`
	Changes     string      `gorm:"type:jsonb"`
	Notes       string      `gorm:"type:varchar(500)"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	IPAddress   string      `gorm:"type:varchar(100);column:ip_address"`
	UserAgent   string      `gorm:"type:text;column:user_agent"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:performed_at"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (e.g. sqlite in tests)
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
