package types

import (
	"github.com/quarkpay/quark-go/memo"
)

// Payment is a single value transfer. It is constructed by the caller and
// read during one submission call; the Sender/Destination fields may be
// rewritten in place exactly once if preferred account resolution kicks in.
type Payment struct {
	Sender      PrivateKey `validate:"required"`
	Destination PublicKey  `validate:"required"`
	Type        memo.TransactionType
	Quarks      int64 `validate:"gt=0"`

	// Subsidizer optionally overrides the service fee payer.
	Subsidizer PrivateKey
	// Channel optionally signs the transaction in place of the sender on
	// the sequence ledger.
	Channel PrivateKey

	Memo    string
	Invoice *Invoice

	// DedupeID is an optional idempotency token forwarded to the gateway.
	DedupeID []byte
}

// Earn is a single disbursement entry within an EarnBatch.
type Earn struct {
	Destination PublicKey `validate:"required"`
	Quarks      int64     `validate:"gt=0"`
	Invoice     *Invoice
}

// EarnBatch is an ordered multi-recipient disbursement. The earn index is
// the join key between an input earn and its per-item result.
type EarnBatch struct {
	Sender PrivateKey `validate:"required"`
	Earns  []Earn     `validate:"min=1,dive"`

	// Subsidizer optionally overrides the service fee payer.
	Subsidizer PrivateKey
	// Channel optionally signs the transaction in place of the sender on
	// the sequence ledger.
	Channel PrivateKey

	Memo string

	// DedupeID is an optional idempotency token forwarded to the gateway.
	DedupeID []byte
}

// EarnResult carries the outcome for a single earn.
type EarnResult struct {
	TxID TransactionID
	Earn Earn
	// Error is nil for succeeded earns. For failed earns it is nil when
	// the earn's sub-batch was never attempted.
	Error error
}

// EarnBatchResult partitions a batch's earns into succeeded and failed,
// preserving the caller's original earn ordering within each list. Every
// input earn appears in exactly one of the two lists.
type EarnBatchResult struct {
	Succeeded []EarnResult
	Failed    []EarnResult
}

// SubmissionResult is the raw outcome of one transaction submission.
type SubmissionResult struct {
	ID            TransactionID
	Errors        TransactionErrors
	InvoiceErrors []InvoiceError
}
