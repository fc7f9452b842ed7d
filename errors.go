package quark

import (
	"github.com/quarkpay/quark-go/gateway"
	"github.com/quarkpay/quark-go/types"
)

// opKind distinguishes transfer instructions from auxiliary ones (memo)
// inside an assembled transaction. The classifier needs it to renumber
// instruction-space failure indices into payment space.
type opKind int

const (
	opKindOther opKind = iota
	opKindTransfer
)

// errorFromReason maps a gateway reason code into the taxonomy. Unknown
// codes produce a wrapped generic error carrying the raw code.
func errorFromReason(r gateway.Reason) error {
	switch r {
	case gateway.ReasonNone:
		return nil
	case gateway.ReasonUnauthorized:
		return types.ErrInvalidSignature
	case gateway.ReasonBadNonce:
		return types.ErrBadNonce
	case gateway.ReasonInsufficientFunds:
		return types.ErrInsufficientBalance
	case gateway.ReasonInvalidAccount:
		return types.ErrAccountDoesNotExist
	default:
		return &types.UnknownReasonError{Reason: int32(r)}
	}
}

// errorFromInvoiceReason maps a per-invoice rejection code into the
// taxonomy.
func errorFromInvoiceReason(r gateway.InvoiceReason) error {
	switch r {
	case gateway.InvoiceReasonAlreadyPaid:
		return types.ErrAlreadyPaid
	case gateway.InvoiceReasonWrongDestination:
		return types.ErrWrongDestination
	case gateway.InvoiceReasonSkuNotFound:
		return types.ErrSkuNotFound
	default:
		return types.ErrTransactionFailed
	}
}

// errorsFromReason classifies a submit-time failure. When the gateway
// reports the failing instruction index, the result carries a
// per-instruction error array sized to the instruction count and, if the
// transaction mixes transfer and non-transfer instructions and the
// failing instruction is a transfer, a payment-space array with the index
// renumbered past the non-transfer instructions.
func errorsFromReason(reason gateway.Reason, opIndex int32, ops []opKind) types.TransactionErrors {
	txErr := errorFromReason(reason)
	if txErr == nil {
		return types.TransactionErrors{}
	}

	txErrors := types.TransactionErrors{TxError: txErr}
	if opIndex < 0 || int(opIndex) >= len(ops) {
		return txErrors
	}

	txErrors.OpErrors = make([]error, len(ops))
	txErrors.OpErrors[opIndex] = txErr

	transfers := 0
	for _, k := range ops {
		if k == opKindTransfer {
			transfers++
		}
	}
	if transfers == len(ops) {
		// Pure-transfer transactions need no renumbering; instruction
		// space is payment space.
		return txErrors
	}
	if ops[opIndex] != opKindTransfer {
		return txErrors
	}

	paymentIndex := 0
	for _, k := range ops[:opIndex] {
		if k == opKindTransfer {
			paymentIndex++
		}
	}

	txErrors.PaymentErrors = make([]error, transfers)
	txErrors.PaymentErrors[paymentIndex] = txErr
	return txErrors
}

// invoiceErrors converts the gateway's per-invoice rejections.
func invoiceErrors(raw []gateway.InvoiceError) []types.InvoiceError {
	if len(raw) == 0 {
		return nil
	}

	out := make([]types.InvoiceError, len(raw))
	for i, e := range raw {
		out[i] = types.InvoiceError{
			OpIndex: e.OpIndex,
			Invoice: e.Invoice,
			Err:     errorFromInvoiceReason(e.Reason),
		}
	}
	return out
}
