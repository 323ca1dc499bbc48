package levyreceipt

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for receipt generation failure conditions.
var (
	ErrInvalidInput  = errors.New("levyreceipt: invalid payment record")
	ErrEngineFailure = errors.New("levyreceipt: document engine failure")
	ErrOverflow      = errors.New("levyreceipt: body content overflows into the footer zone")
	ErrNoPayments    = errors.New("levyreceipt: no payments to render")
)

// ReceiptError represents an error that occurred while producing the receipt
// for a single payment. It wraps one of the sentinel errors above.
type ReceiptError struct {
	Op            string // operation name, e.g. "validate", "layout", "draw", "save"
	ReceiptNumber string
	Err           error
}

func (e *ReceiptError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("levyreceipt.%s %s: unknown error", e.Op, e.ReceiptNumber)
	}
	if e.ReceiptNumber == "" {
		return fmt.Sprintf("levyreceipt.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("levyreceipt.%s %s: %v", e.Op, e.ReceiptNumber, e.Err)
}

func (e *ReceiptError) Unwrap() error {
	return e.Err
}

func newReceiptError(op, receiptNumber string, err error) *ReceiptError {
	return &ReceiptError{Op: op, ReceiptNumber: receiptNumber, Err: err}
}

// BatchError reports every record that failed during RenderAll. The batch
// itself keeps going past individual failures.
type BatchError struct {
	Failures []*ReceiptError
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("levyreceipt: %d of the batch failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
