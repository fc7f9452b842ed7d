package types

import (
	"errors"
	"fmt"
)

// The error taxonomy. Gateway reason codes and ledger-native result codes
// both classify into this closed set, so callers dispatch with errors.Is
// regardless of which wire format produced the failure.
var (
	ErrAccountExists           = errors.New("account already exists")
	ErrAccountDoesNotExist     = errors.New("account does not exist")
	ErrBadNonce                = errors.New("bad nonce")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInsufficientFee         = errors.New("insufficient fee")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrMalformed               = errors.New("malformed transaction")
	ErrSenderDoesNotExist      = errors.New("sender account does not exist")
	ErrDestinationDoesNotExist = errors.New("destination account does not exist")
	ErrTransactionRejected     = errors.New("transaction rejected")
	ErrPayerRequired           = errors.New("payer required")
	ErrNoSubsidizer            = errors.New("no subsidizer available")
	ErrAlreadySubmitted        = errors.New("transaction already submitted")
	ErrNoTokenAccounts         = errors.New("no token accounts")
	ErrAlreadyPaid             = errors.New("invoice already paid")
	ErrWrongDestination        = errors.New("wrong invoice destination")
	ErrSkuNotFound             = errors.New("sku not found")
	ErrTransactionFailed       = errors.New("transaction failed")
)

// NonRetriableErrors are conditions a blind resubmission cannot fix; the
// generic retry budget must not re-attempt them.
var NonRetriableErrors = []error{
	ErrAccountExists,
	ErrMalformed,
	ErrSenderDoesNotExist,
	ErrDestinationDoesNotExist,
	ErrInsufficientBalance,
	ErrInsufficientFee,
	ErrTransactionRejected,
	ErrAlreadyPaid,
	ErrWrongDestination,
	ErrSkuNotFound,
	ErrBadNonce,
	ErrAlreadySubmitted,
	ErrNoTokenAccounts,
}

// UnknownReasonError wraps a gateway reason code that has no mapping in
// the taxonomy. It classifies as a generic transaction failure.
type UnknownReasonError struct {
	Reason int32
}

func (e *UnknownReasonError) Error() string {
	return fmt.Sprintf("transaction failed with unknown reason code %d", e.Reason)
}

func (e *UnknownReasonError) Unwrap() error {
	return ErrTransactionFailed
}

// TransactionErrors carries the classified failure state of one submitted
// transaction.
type TransactionErrors struct {
	// TxError is the transaction-level error, if any.
	TxError error
	// OpErrors has one slot per instruction; at most the failing index is
	// populated.
	OpErrors []error
	// PaymentErrors has one slot per transfer instruction, renumbered to
	// payment space when the transaction also carries non-transfer
	// instructions. Nil when the failing instruction is not a transfer.
	PaymentErrors []error
}

// Any reports whether any error was recorded.
func (t TransactionErrors) Any() bool {
	if t.TxError != nil {
		return true
	}
	for _, err := range t.OpErrors {
		if err != nil {
			return true
		}
	}
	return false
}

// InvoiceError reports an invoice-level rejection for the operation at
// OpIndex.
type InvoiceError struct {
	OpIndex uint32
	Invoice *Invoice
	Err     error
}

func (e InvoiceError) Error() string {
	return fmt.Sprintf("invoice error at operation %d: %v", e.OpIndex, e.Err)
}

func (e InvoiceError) Unwrap() error {
	return e.Err
}
