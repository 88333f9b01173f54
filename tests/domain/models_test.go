package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/adicipta/procure-api/internal/domain"
)

func TestPurchaseOrderItemSubtotal(t *testing.T) {
	item := domain.PurchaseOrderItem{
		Quantity:      3,
		PurchasePrice: decimal.RequireFromString("125.50"),
	}
	want := decimal.RequireFromString("376.50")
	if got := item.Subtotal(); !got.Equal(want) {
		t.Errorf("Subtotal() = %s, want %s", got, want)
	}
}

func TestPurchaseOrderItemSubtotalZeroQuantity(t *testing.T) {
	item := domain.PurchaseOrderItem{
		Quantity:      0,
		PurchasePrice: decimal.NewFromInt(999),
	}
	if got := item.Subtotal(); !got.IsZero() {
		t.Errorf("Subtotal() = %s, want 0", got)
	}
}

func TestGetDocumentPrefix(t *testing.T) {
	tests := []struct {
		docType domain.SequenceDocType
		want    string
	}{
		{domain.DocTypePurchaseOrder, "PO"},
		{domain.DocTypePayment, "PAY"},
		{domain.DocTypeAPInvoice, "AP"},
		{domain.DocTypeJournal, "JRN"},
		{domain.SequenceDocType("unknown"), "DOC"},
	}
	for _, tt := range tests {
		if got := domain.GetDocumentPrefix(tt.docType); got != tt.want {
			t.Errorf("GetDocumentPrefix(%s) = %s, want %s", tt.docType, got, tt.want)
		}
	}
}

func TestSequenceDocTypeIsValid(t *testing.T) {
	for _, d := range []domain.SequenceDocType{
		domain.DocTypePurchaseOrder, domain.DocTypePayment,
		domain.DocTypeAPInvoice, domain.DocTypeJournal,
	} {
		if !d.IsValid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if domain.SequenceDocType("receipt").IsValid() {
		t.Error("receipt should not be a valid document type")
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	for _, m := range []domain.PaymentMethod{
		domain.PaymentMethodTransfer, domain.PaymentMethodCash, domain.PaymentMethodCheque,
	} {
		if !m.IsValid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if domain.PaymentMethod("crypto").IsValid() {
		t.Error("crypto should not be a valid payment method")
	}
}
