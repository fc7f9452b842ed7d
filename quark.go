// Package quark implements a client-side transaction submission engine
// for a payments network fronted by a remote transaction gateway. It
// builds, signs, submits and tracks value-transfer transactions against
// two ledger protocols -- a legacy sequence-number ledger and a
// nonce/blockhash ledger -- behind a single ledger-agnostic Client.
package quark

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Environment selects the gateway deployment a client talks to.
type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "prod"
)

// Ledger selects the underlying ledger protocol.
type Ledger int

const (
	// LedgerSequence is the legacy account/sequence-number ledger.
	LedgerSequence Ledger = iota
	// LedgerNonce is the nonce/blockhash ledger.
	LedgerNonce
)

func (l Ledger) String() string {
	switch l {
	case LedgerSequence:
		return "sequence"
	case LedgerNonce:
		return "nonce"
	default:
		return "unknown"
	}
}

// QuarksPerUnit is the number of quarks in one whole unit of the asset.
const QuarksPerUnit = 100_000

const quarkDecimals = 5

// UnitsToQuarks converts a decimal string of whole units into quarks.
// Amounts with sub-quark precision are rejected.
func UnitsToQuarks(units string) (int64, error) {
	d, err := decimal.NewFromString(units)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", units, err)
	}

	q := d.Shift(quarkDecimals)
	if !q.Equal(q.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", units, quarkDecimals)
	}
	if !q.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q overflows", units)
	}
	return q.IntPart(), nil
}

// QuarksToUnits formats a quark amount as a decimal string of whole
// units.
func QuarksToUnits(quarks int64) string {
	return decimal.NewFromInt(quarks).Shift(-quarkDecimals).String()
}

// DedupeIDSize is the length of submission idempotency tokens.
const DedupeIDSize = 32

// NewDedupeID produces a random idempotency token for submission calls.
func NewDedupeID() ([]byte, error) {
	id := make([]byte, DedupeIDSize)

	a, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate dedupe id: %w", err)
	}
	copy(id, a[:])

	if _, err := rand.Read(id[len(a):]); err != nil {
		return nil, fmt.Errorf("failed to generate dedupe id: %w", err)
	}
	return id, nil
}
