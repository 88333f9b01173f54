package service

import (
	"errors"
	"fmt"
)

// ErrValidation indicates the request failed input validation
var ErrValidation = errors.New("validation failed")

// ErrSalesOrderNotFound indicates the sales order does not exist
var ErrSalesOrderNotFound = errors.New("sales order not found")

// ErrSalesOrderLineNotFound indicates the demand line does not exist
var ErrSalesOrderLineNotFound = errors.New("sales order line not found")

// ErrSalesOrderNotProcurable indicates the sales order is closed to new purchase orders
var ErrSalesOrderNotProcurable = errors.New("sales order is not open for procurement")

// ErrPurchaseOrderNotFound indicates the purchase order does not exist
var ErrPurchaseOrderNotFound = errors.New("purchase order not found")

// ErrPaymentNotFound indicates the payment does not exist
var ErrPaymentNotFound = errors.New("payment not found")

// ErrBankAccountNotFound indicates the referenced bank account does not exist
var ErrBankAccountNotFound = errors.New("bank account not found")

// ErrBankAccountRequired indicates a transfer payment without a bank account
var ErrBankAccountRequired = errors.New("bank account is required for transfer payments")

// ErrNoProcurableItems indicates every requested line had zero quantity
var ErrNoProcurableItems = errors.New("purchase order has no items with a positive quantity")

// ErrInvalidTransition indicates the lifecycle action is not allowed from the current status
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrRejectionReasonRequired indicates a rejection without a reason
var ErrRejectionReasonRequired = errors.New("rejection requires a reason")

// ErrNotFinanceApproved indicates a payment against a purchase order that finance has not approved
var ErrNotFinanceApproved = errors.New("purchase order is not approved by finance")

// ErrAlreadyPaid indicates the purchase order has already been paid
var ErrAlreadyPaid = errors.New("purchase order is already paid")

// ErrPurchaseOrderNotCancellable indicates a cancel on a purchase order past submission
var ErrPurchaseOrderNotCancellable = errors.New("only submitted purchase orders can be cancelled")

// ErrSequenceUnavailable indicates the document number counter could not be read or advanced
var ErrSequenceUnavailable = errors.New("document sequence unavailable")

// QuantityExceededError reports a requested quantity above what is left
// on the sales order line.
type QuantityExceededError struct {
	ProductCode string
	Requested   int
	Remaining   int
}

// Error implements the error interface
func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("requested quantity %d for product %s exceeds remaining %d",
		e.Requested, e.ProductCode, e.Remaining)
}

// PostingFailureError reports a failed financial posting. The surrounding
// transaction is rolled back, so the triggering mutation never lands
// without its posting.
type PostingFailureError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *PostingFailureError) Error() string {
	return fmt.Sprintf("financial posting failed at %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error
func (e *PostingFailureError) Unwrap() error {
	return e.Err
}
