// Package types holds the value objects shared across the submission
// engine: keys, payments, earn batches, invoices, submission results and
// the error taxonomy.
package types

import (
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// Commitment is the durability guarantee requested for a read or submit
// call. It is passed through to the gateway unchanged.
type Commitment int

const (
	// CommitmentRecent requires only that the most recent ledger state has
	// observed the transaction.
	CommitmentRecent Commitment = iota
	// CommitmentConfirmed requires confirmation by a cluster majority.
	CommitmentConfirmed
	// CommitmentMax requires the transaction to be rooted/finalized.
	CommitmentMax
)

func (c Commitment) String() string {
	switch c {
	case CommitmentRecent:
		return "recent"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentMax:
		return "max"
	default:
		return "unknown"
	}
}

// TransactionID identifies a submitted transaction: a 64-byte signature on
// the nonce ledger, a 32-byte hash on the sequence ledger.
type TransactionID []byte

func (id TransactionID) String() string {
	if len(id) == 64 {
		return base58.Encode(id)
	}
	return hex.EncodeToString(id)
}

// Blockhash is the nonce ledger's freshness token.
type Blockhash [32]byte

// AccountResolution controls whether the engine may substitute resolved
// token accounts for a bare owner identity when a submission fails with
// an account-does-not-exist error.
type AccountResolution int

const (
	// AccountResolutionPreferred allows the engine to resolve the owner's
	// token accounts and resubmit once with the first resolved account.
	AccountResolutionPreferred AccountResolution = iota
	// AccountResolutionExact fails exactly as addressed.
	AccountResolutionExact
)
