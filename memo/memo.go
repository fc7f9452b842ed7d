// Package memo implements the custom memo payload embedded in ledger memo
// instructions: a fixed 33-byte blob identifying the app that produced a
// transaction and, optionally, the invoice list it pays for.
package memo

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// TransactionType describes the high-level purpose of a payment.
type TransactionType int8

const (
	TransactionTypeUnknown TransactionType = iota - 1
	TransactionTypeNone
	TransactionTypeEarn
	TransactionTypeSpend
	TransactionTypeP2P
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeNone:
		return "none"
	case TransactionTypeEarn:
		return "earn"
	case TransactionTypeSpend:
		return "spend"
	case TransactionTypeP2P:
		return "p2p"
	default:
		return "unknown"
	}
}

// Version of the memo layout produced by this package.
const Version = 1

// Size is the serialized length: version (1) + transaction type (1) +
// app index (2, big endian) + foreign key (29).
const Size = 33

// ForeignKeySize is the length of the foreign-key section. When the
// transaction pays for an invoice list, the first 28 bytes hold its
// SHA-224 digest and the final byte is zero; otherwise all 29 bytes are
// zero.
const ForeignKeySize = 29

// Memo is the decoded payload.
type Memo struct {
	Version         byte
	TransactionType TransactionType
	AppIndex        uint16
	ForeignKey      [ForeignKeySize]byte
}

// New assembles a memo for the given transaction type and app index.
// foreignKey may be nil for a zero-filled key.
func New(txType TransactionType, appIndex uint16, foreignKey []byte) (Memo, error) {
	if txType < TransactionTypeNone || txType > TransactionTypeP2P {
		return Memo{}, fmt.Errorf("invalid transaction type: %d", txType)
	}
	if len(foreignKey) > ForeignKeySize {
		return Memo{}, fmt.Errorf("foreign key too long: %d", len(foreignKey))
	}

	m := Memo{
		Version:         Version,
		TransactionType: txType,
		AppIndex:        appIndex,
	}
	copy(m.ForeignKey[:], foreignKey)
	return m, nil
}

// Marshal encodes the memo into its 33-byte wire form.
func (m Memo) Marshal() []byte {
	b := make([]byte, Size)
	b[0] = m.Version
	b[1] = byte(m.TransactionType)
	binary.BigEndian.PutUint16(b[2:4], m.AppIndex)
	copy(b[4:], m.ForeignKey[:])
	return b
}

// Base64 returns the text form placed inside a ledger memo instruction.
func (m Memo) Base64() string {
	return base64.StdEncoding.EncodeToString(m.Marshal())
}

// Unmarshal decodes a 33-byte wire form.
func Unmarshal(b []byte) (Memo, error) {
	if len(b) != Size {
		return Memo{}, fmt.Errorf("invalid memo length: %d", len(b))
	}

	m := Memo{
		Version:         b[0],
		TransactionType: TransactionType(int8(b[1])),
		AppIndex:        binary.BigEndian.Uint16(b[2:4]),
	}
	copy(m.ForeignKey[:], b[4:])
	return m, nil
}

// FromBase64 decodes the text form found in a ledger memo instruction.
func FromBase64(s string) (Memo, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Memo{}, fmt.Errorf("invalid base64 memo: %w", err)
	}
	return Unmarshal(raw)
}

// IsValid reports whether the blob parses as a memo this package could
// have produced.
func (m Memo) IsValid() bool {
	return m.Version <= Version &&
		m.TransactionType >= TransactionTypeNone &&
		m.TransactionType <= TransactionTypeP2P
}
