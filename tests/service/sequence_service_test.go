package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/service"
)

func TestFormatDocumentCode(t *testing.T) {
	tests := []struct {
		name        string
		docType     domain.SequenceDocType
		companyCode string
		projectCode string
		number      int
		want        string
	}{
		{"purchase order", domain.DocTypePurchaseOrder, "ACME", "", 1, "PO-ACME-0001"},
		{"payment", domain.DocTypePayment, "ACME", "", 42, "PAY-ACME-0042"},
		{"ap invoice", domain.DocTypeAPInvoice, "ACME", "", 7, "AP-ACME-0007"},
		{"journal", domain.DocTypeJournal, "ACME", "", 123, "JRN-ACME-0123"},
		{"project scoped", domain.DocTypePurchaseOrder, "ACME", "PRJ1", 9, "PO-ACME-PRJ1-0009"},
		{"number wider than padding", domain.DocTypePurchaseOrder, "ACME", "", 12345, "PO-ACME-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.FormatDocumentCode(tt.docType, tt.companyCode, tt.projectCode, tt.number)
			if got != tt.want {
				t.Errorf("FormatDocumentCode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSequenceNextAllocatesFormattedCodes(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	code, number, err := f.sequences.Next(ctx, domain.DocTypePurchaseOrder, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 1, number)
	require.Equal(t, "PO-ACME-0001", code)

	code, number, err = f.sequences.Next(ctx, domain.DocTypePurchaseOrder, "ACME", "")
	require.NoError(t, err)
	require.Equal(t, 2, number)
	require.Equal(t, "PO-ACME-0002", code)
}

func TestSequenceNextValidatesKey(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	_, _, err := f.sequences.Next(ctx, domain.SequenceDocType("receipt"), "ACME", "")
	require.ErrorIs(t, err, service.ErrValidation)

	_, _, err = f.sequences.Next(ctx, domain.DocTypePurchaseOrder, "", "")
	require.ErrorIs(t, err, service.ErrValidation)
}
