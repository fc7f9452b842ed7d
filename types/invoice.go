package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// LineItem is a single entry in an invoice.
type LineItem struct {
	Title       string `validate:"required,min=1,max=128"`
	Description string `validate:"max=256"`
	Amount      int64
	// SKU is an optional app-defined product identifier.
	SKU []byte `validate:"max=128"`
}

// Invoice is a structured, itemized description of what a payment is for.
// Its hash is embedded in the transaction memo as a foreign key.
type Invoice struct {
	Items []LineItem `validate:"min=1,max=1024,dive"`
}

// MarshalInvoiceList encodes a list of invoices into the canonical binary
// form used for foreign-key hashing: length-prefixed counts and strings
// with little-endian integers, so the same logical list always hashes to
// the same key.
func MarshalInvoiceList(invoices []*Invoice) ([]byte, error) {
	if len(invoices) > 1024 {
		return nil, fmt.Errorf("invoice list too large: %d", len(invoices))
	}

	var out []byte
	out = binary.LittleEndian.AppendUint16(out, uint16(len(invoices)))
	for _, inv := range invoices {
		if inv == nil || len(inv.Items) == 0 {
			return nil, fmt.Errorf("invoice list contains an empty invoice")
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(len(inv.Items)))
		for _, item := range inv.Items {
			if len(item.Title) == 0 {
				return nil, fmt.Errorf("line item missing title")
			}
			out = appendString(out, item.Title)
			out = appendString(out, item.Description)
			out = binary.LittleEndian.AppendUint64(out, uint64(item.Amount))
			out = appendString(out, string(item.SKU))
		}
	}
	return out, nil
}

// InvoiceListForeignKey derives the 29-byte memo foreign key for a list of
// invoices: the SHA-224 digest of the canonical serialization, zero padded
// by one byte.
func InvoiceListForeignKey(invoices []*Invoice) ([29]byte, error) {
	var fk [29]byte

	raw, err := MarshalInvoiceList(invoices)
	if err != nil {
		return fk, err
	}

	h := sha256.Sum224(raw)
	copy(fk[:28], h[:])
	return fk, nil
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}
