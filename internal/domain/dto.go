package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// CreatePurchaseOrderRequest is the payload for submitting a purchase order
type CreatePurchaseOrderRequest struct {
	SOCode       string                           `json:"soCode" validate:"required"`
	SupplierName string                           `json:"supplierName" validate:"required"`
	Priority     string                           `json:"priority" validate:"omitempty,oneof=low medium high"`
	ProjectCode  string                           `json:"projectCode" validate:"omitempty,max=50"`
	Notes        string                           `json:"notes" validate:"omitempty,max=2000"`
	Items        []CreatePurchaseOrderItemRequest `json:"items" validate:"required,dive"`
}

// CreatePurchaseOrderItemRequest is a single requested procurement line
type CreatePurchaseOrderItemRequest struct {
	ItemCode      string          `json:"itemCode" validate:"required"`
	ProductCode   string          `json:"productCode" validate:"required"`
	ProductName   string          `json:"productName" validate:"omitempty,max=200"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
}

// TransitionPurchaseOrderRequest asks for a lifecycle action on a purchase order
type TransitionPurchaseOrderRequest struct {
	Action string `json:"action" validate:"required,oneof=approve_spv approve_finance reject"`
	Notes  string `json:"notes" validate:"omitempty,max=500"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// RecordPaymentRequest carries the form fields of a multipart payment upload
type RecordPaymentRequest struct {
	Method          string `json:"method" validate:"required,oneof=transfer cash cheque"`
	ReferenceNumber string `json:"referenceNumber" validate:"omitempty,max=100"`
	BankAccountCode string `json:"bankAccountCode" validate:"omitempty,max=50"`
	PaymentDate     string `json:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

// AllocateSequenceRequest asks for the next number of a document sequence
type AllocateSequenceRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=purchase_order payment ap_invoice journal"`
	CompanyCode  string `json:"companyCode" validate:"required,max=20"`
	ProjectCode  string `json:"projectCode" validate:"omitempty,max=50"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// ErrorResponse is the generic error body for non-validation failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// SequenceAllocationDTO is the result of a sequence allocation
type SequenceAllocationDTO struct {
	Code         string `json:"code"`
	Number       int    `json:"number"`
	DocumentType string `json:"documentType"`
	CompanyCode  string `json:"companyCode"`
	ProjectCode  string `json:"projectCode,omitempty"`
}

// RemainingQuantityDTO reports the procurable quantity left on an SO line
type RemainingQuantityDTO struct {
	SOCode      string `json:"soCode"`
	ItemCode    string `json:"itemCode"`
	ProductCode string `json:"productCode"`
	Quantity    int    `json:"quantity"`
	Remaining   int    `json:"remaining"`
}

// PurchaseOrderDTO is the API representation of a purchase order
type PurchaseOrderDTO struct {
	ID                string                 `json:"id"`
	POCode            string                 `json:"poCode"`
	SOCode            string                 `json:"soCode"`
	SupplierName      string                 `json:"supplierName"`
	Status            string                 `json:"status"`
	Priority          string                 `json:"priority"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	CompanyCode       string                 `json:"companyCode"`
	ProjectCode       string                 `json:"projectCode,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	SubmittedByName   string                 `json:"submittedByName,omitempty"`
	SpvApprovedBy     string                 `json:"spvApprovedBy,omitempty"`
	SpvApprovedAt     *time.Time             `json:"spvApprovedAt,omitempty"`
	FinanceApprovedBy string                 `json:"financeApprovedBy,omitempty"`
	FinanceApprovedAt *time.Time             `json:"financeApprovedAt,omitempty"`
	ApprovalNotes     string                 `json:"approvalNotes,omitempty"`
	RejectedBy        string                 `json:"rejectedBy,omitempty"`
	RejectedAt        *time.Time             `json:"rejectedAt,omitempty"`
	RejectionReason   string                 `json:"rejectionReason,omitempty"`
	PaidAt            *time.Time             `json:"paidAt,omitempty"`
	APCode            string                 `json:"apCode,omitempty"`
	JournalCode       string                 `json:"journalCode,omitempty"`
	Items             []PurchaseOrderItemDTO `json:"items,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// PurchaseOrderItemDTO is the API representation of a purchase order line
type PurchaseOrderItemDTO struct {
	ID            string          `json:"id"`
	POItemCode    string          `json:"poItemCode"`
	ProductCode   string          `json:"productCode"`
	ProductName   string          `json:"productName,omitempty"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// PaymentDTO is the API representation of a payment
type PaymentDTO struct {
	ID              string               `json:"id"`
	PaymentCode     string               `json:"paymentCode"`
	POCode          string               `json:"poCode"`
	Amount          decimal.Decimal      `json:"amount"`
	Method          string               `json:"method"`
	ReferenceNumber string               `json:"referenceNumber,omitempty"`
	BankAccountCode string               `json:"bankAccountCode,omitempty"`
	PaymentDate     time.Time            `json:"paymentDate"`
	Status          string               `json:"status"`
	Notes           string               `json:"notes,omitempty"`
	CreatedByName   string               `json:"createdByName,omitempty"`
	Documents       []PaymentDocumentDTO `json:"documents,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// PaymentDocumentDTO is the API representation of a stored payment document
type PaymentDocumentDTO struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	DocType     string `json:"docType"`
}

// APInvoiceDTO is the API representation of a payable
type APInvoiceDTO struct {
	ID           string          `json:"id"`
	APCode       string          `json:"apCode"`
	POCode       string          `json:"poCode"`
	SupplierName string          `json:"supplierName"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	IssuedAt     time.Time       `json:"issuedAt"`
}

// JournalEntryDTO is the API representation of a journal entry
type JournalEntryDTO struct {
	ID          string           `json:"id"`
	JournalCode string           `json:"journalCode"`
	PaymentCode string           `json:"paymentCode"`
	POCode      string           `json:"poCode"`
	EntryDate   time.Time        `json:"entryDate"`
	Memo        string           `json:"memo,omitempty"`
	Lines       []JournalLineDTO `json:"lines,omitempty"`
}

// JournalLineDTO is a single journal leg
type JournalLineDTO struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// SalesOrderDTO is the API representation of a sales order
type SalesOrderDTO struct {
	ID           string              `json:"id"`
	SOCode       string              `json:"soCode"`
	CustomerName string              `json:"customerName"`
	CompanyCode  string              `json:"companyCode"`
	Status       string              `json:"status"`
	OrderDate    time.Time           `json:"orderDate"`
	Lines        []SalesOrderLineDTO `json:"lines,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// SalesOrderLineDTO is a sales order demand line with its remaining quantity
type SalesOrderLineDTO struct {
	ID                string          `json:"id"`
	ItemCode          string          `json:"itemCode"`
	ProductCode       string          `json:"productCode"`
	ProductName       string          `json:"productName,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	RemainingQuantity int             `json:"remainingQuantity"`
}

// AuditLogDTO is the API representation of an audit trail entry
type AuditLogDTO struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actorId,omitempty"`
	ActorName   string    `json:"actorName,omitempty"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entityType"`
	EntityCode  string    `json:"entityCode"`
	OldValues   string    `json:"oldValues,omitempty"`
	NewValues   string    `json:"newValues,omitempty"`
	Changes     string    `json:"changes,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
}
