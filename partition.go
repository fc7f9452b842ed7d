package quark

import (
	"github.com/quarkpay/quark-go/types"
)

// maxTxSize is the nonce ledger's serialized transaction byte budget.
const maxTxSize = 1232

// Estimator constants. The estimate is closed-form: it never serializes a
// candidate transaction.
const (
	signatureSize = 64
	blockhashSize = 32
	accountSize   = 32
	headerSize    = 3

	// fixedAccountCount covers the three fixed roles in every batch
	// transaction: fee payer, transfer authority and token program.
	fixedAccountCount = 3

	// structuredMemoSize is the full cost of a memo instruction carrying
	// the base64 33-byte structured payload.
	structuredMemoSize = 79
	// textMemoBaseSize is the cost of a text memo instruction before the
	// length-prefixed text itself.
	textMemoBaseSize = 34

	// transferSize is the marginal cost of one transfer instruction given
	// that its accounts are already in the account list.
	transferSize = 15
)

// maxSequenceBatchSize is the structural earn limit per transaction on
// the sequence ledger, which has no byte-budget partitioning.
const maxSequenceBatchSize = 100

// batchShape describes the parts of a candidate transaction that cost
// bytes besides the earns themselves.
type batchShape struct {
	// separateSource is set when the transfer source is a resolved token
	// account distinct from the three fixed roles.
	separateSource bool
	// structuredMemo is set when the transaction carries the 33-byte
	// structured memo payload.
	structuredMemo bool
	// textMemo is the free-text memo, empty for none.
	textMemo string
	// signatures is the number of signature slots.
	signatures int
}

// partitionEarns splits earns into ordered sub-batches whose estimated
// serialized size stays within the transaction byte budget. Every earn
// lands in exactly one sub-batch and relative order is preserved. An earn
// whose addition would exceed the budget closes the current sub-batch
// exclusively; an estimate exactly at the budget closes it inclusively.
func partitionEarns(earns []types.Earn, shape batchShape) [][]types.Earn {
	var batches [][]types.Earn

	start := 0
	for i := range earns {
		size := estimateBatchSize(earns[start:i+1], shape)
		switch {
		case size > maxTxSize:
			if i == start {
				// A single earn over budget still gets its own
				// sub-batch; the gateway will reject it outright.
				batches = append(batches, earns[i:i+1])
				start = i + 1
				continue
			}
			batches = append(batches, earns[start:i])
			start = i
		case size == maxTxSize:
			batches = append(batches, earns[start:i+1])
			start = i + 1
		}
	}
	if start < len(earns) {
		batches = append(batches, earns[start:])
	}
	return batches
}

// estimateBatchSize computes the closed-form serialized size of a
// transaction carrying the given earns.
func estimateBatchSize(earns []types.Earn, shape batchShape) int {
	accounts := fixedAccountCount + countUniqueDestinations(earns)
	if shape.separateSource {
		accounts++
	}

	size := 1 + shape.signatures*signatureSize +
		headerSize +
		1 + accounts*accountSize +
		blockhashSize +
		1

	if shape.structuredMemo {
		size += structuredMemoSize
	} else if shape.textMemo != "" {
		size += textMemoBaseSize + 1 + len(shape.textMemo)
	}

	return size + len(earns)*transferSize
}

func countUniqueDestinations(earns []types.Earn) int {
	seen := make(map[string]struct{}, len(earns))
	for _, e := range earns {
		seen[e.Destination.Base58()] = struct{}{}
	}
	return len(seen)
}

// chunkEarns splits earns into count-limited sub-batches for the
// sequence ledger.
func chunkEarns(earns []types.Earn, limit int) [][]types.Earn {
	var batches [][]types.Earn
	for start := 0; start < len(earns); start += limit {
		end := start + limit
		if end > len(earns) {
			end = len(earns)
		}
		batches = append(batches, earns[start:end])
	}
	return batches
}
