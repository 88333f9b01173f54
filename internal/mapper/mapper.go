package mapper

import (
	"github.com/adicipta/procure-api/internal/domain"
)

// ToPurchaseOrderDTO maps a purchase order model to its API shape
func ToPurchaseOrderDTO(po *domain.PurchaseOrder) *domain.PurchaseOrderDTO {
	dto := &domain.PurchaseOrderDTO{
		ID:                po.ID.String(),
		POCode:            po.POCode,
		SOCode:            po.SOCode,
		SupplierName:      po.SupplierName,
		Status:            string(po.Status),
		Priority:          string(po.Priority),
		TotalAmount:       po.TotalAmount,
		CompanyCode:       po.CompanyCode,
		ProjectCode:       po.ProjectCode,
		Notes:             po.Notes,
		SubmittedByName:   po.SubmittedByName,
		SpvApprovedBy:     po.SpvApprovedBy,
		SpvApprovedAt:     po.SpvApprovedAt,
		FinanceApprovedBy: po.FinanceApprovedBy,
		FinanceApprovedAt: po.FinanceApprovedAt,
		ApprovalNotes:     po.ApprovalNotes,
		RejectedBy:        po.RejectedBy,
		RejectedAt:        po.RejectedAt,
		RejectionReason:   po.RejectionReason,
		PaidAt:            po.PaidAt,
		APCode:            po.APCode,
		JournalCode:       po.JournalCode,
		CreatedAt:         po.CreatedAt,
		UpdatedAt:         po.UpdatedAt,
	}
	for i := range po.Items {
		dto.Items = append(dto.Items, *ToPurchaseOrderItemDTO(&po.Items[i]))
	}
	return dto
}

// ToPurchaseOrderItemDTO maps a purchase order line to its API shape
func ToPurchaseOrderItemDTO(item *domain.PurchaseOrderItem) *domain.PurchaseOrderItemDTO {
	return &domain.PurchaseOrderItemDTO{
		ID:            item.ID.String(),
		POItemCode:    item.POItemCode,
		ProductCode:   item.ProductCode,
		ProductName:   item.ProductName,
		Quantity:      item.Quantity,
		PurchasePrice: item.PurchasePrice,
		Subtotal:      item.Subtotal(),
	}
}

// ToPaymentDTO maps a payment model to its API shape
func ToPaymentDTO(payment *domain.Payment) *domain.PaymentDTO {
	dto := &domain.PaymentDTO{
		ID:              payment.ID.String(),
		PaymentCode:     payment.PaymentCode,
		POCode:          payment.POCode,
		Amount:          payment.Amount,
		Method:          string(payment.Method),
		ReferenceNumber: payment.ReferenceNumber,
		BankAccountCode: payment.BankAccountCode,
		PaymentDate:     payment.PaymentDate,
		Status:          string(payment.Status),
		Notes:           payment.Notes,
		CreatedByName:   payment.CreatedByName,
		CreatedAt:       payment.CreatedAt,
	}
	for i := range payment.Documents {
		doc := &payment.Documents[i]
		dto.Documents = append(dto.Documents, domain.PaymentDocumentDTO{
			ID:          doc.ID.String(),
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			DocType:     string(doc.DocType),
		})
	}
	return dto
}

// ToAPInvoiceDTO maps a payable to its API shape
func ToAPInvoiceDTO(invoice *domain.APInvoice) *domain.APInvoiceDTO {
	return &domain.APInvoiceDTO{
		ID:           invoice.ID.String(),
		APCode:       invoice.APCode,
		POCode:       invoice.POCode,
		SupplierName: invoice.SupplierName,
		Amount:       invoice.Amount,
		Status:       string(invoice.Status),
		IssuedAt:     invoice.IssuedAt,
	}
}

// ToJournalEntryDTO maps a journal entry to its API shape
func ToJournalEntryDTO(entry *domain.JournalEntry) *domain.JournalEntryDTO {
	dto := &domain.JournalEntryDTO{
		ID:          entry.ID.String(),
		JournalCode: entry.JournalCode,
		PaymentCode: entry.PaymentCode,
		POCode:      entry.POCode,
		EntryDate:   entry.EntryDate,
		Memo:        entry.Memo,
	}
	for i := range entry.Lines {
		line := &entry.Lines[i]
		dto.Lines = append(dto.Lines, domain.JournalLineDTO{
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
		})
	}
	return dto
}

// ToSalesOrderDTO maps a sales order to its API shape. Remaining
// quantities are filled in by the service layer.
func ToSalesOrderDTO(so *domain.SalesOrder) *domain.SalesOrderDTO {
	dto := &domain.SalesOrderDTO{
		ID:           so.ID.String(),
		SOCode:       so.SOCode,
		CustomerName: so.CustomerName,
		CompanyCode:  so.CompanyCode,
		Status:       string(so.Status),
		OrderDate:    so.OrderDate,
		CreatedAt:    so.CreatedAt,
		UpdatedAt:    so.UpdatedAt,
	}
	for i := range so.Lines {
		line := &so.Lines[i]
		dto.Lines = append(dto.Lines, domain.SalesOrderLineDTO{
			ID:          line.ID.String(),
			ItemCode:    line.ItemCode,
			ProductCode: line.ProductCode,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	return dto
}

// ToAuditLogDTO maps an audit entry to its API shape
func ToAuditLogDTO(entry *domain.AuditLog) *domain.AuditLogDTO {
	return &domain.AuditLogDTO{
		ID:          entry.ID.String(),
		ActorID:     entry.ActorID,
		ActorName:   entry.ActorName,
		Action:      string(entry.Action),
		EntityType:  entry.EntityType,
		EntityCode:  entry.EntityCode,
		OldValues:   entry.OldValues,
		NewValues:   entry.NewValues,
		Changes:     entry.Changes,
		Notes:       entry.Notes,
		RequestID:   entry.RequestID,
		PerformedAt: entry.PerformedAt,
	}
}
