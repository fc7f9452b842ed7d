package types

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
)

// PublicKey is a raw ed25519 public key. Both ledgers address accounts by
// ed25519 keys, so a single key type serves as the identity on either side;
// the ledger-specific encodings are derived on demand.
type PublicKey []byte

// PublicKeyFromString parses either a base58-encoded key (nonce ledger) or
// a G-prefixed address (sequence ledger).
func PublicKeyFromString(s string) (PublicKey, error) {
	if len(s) > 0 && s[0] == 'G' {
		raw, err := strkey.Decode(strkey.VersionByteAccountID, s)
		if err == nil {
			return PublicKey(raw), nil
		}
	}

	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return nil, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return PublicKey(pk[:]), nil
}

// Base58 returns the nonce-ledger encoding of the key.
func (k PublicKey) Base58() string {
	return solana.PublicKeyFromBytes(k).String()
}

// StellarAddress returns the sequence-ledger encoding of the key.
func (k PublicKey) StellarAddress() string {
	addr, err := strkey.Encode(strkey.VersionByteAccountID, k)
	if err != nil {
		return ""
	}
	return addr
}

// SolanaKey converts the key into the nonce ledger's native type.
func (k PublicKey) SolanaKey() solana.PublicKey {
	return solana.PublicKeyFromBytes(k)
}

// Equals reports whether two keys hold the same bytes.
func (k PublicKey) Equals(other PublicKey) bool {
	return bytes.Equal(k, other)
}

// PrivateKey is a raw 64-byte ed25519 private key (seed || public key).
type PrivateKey []byte

// NewPrivateKey generates a random key.
func NewPrivateKey() (PrivateKey, error) {
	k, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return PrivateKey(k), nil
}

// PrivateKeyFromString parses either a base58-encoded private key or an
// S-prefixed sequence-ledger seed.
func PrivateKeyFromString(s string) (PrivateKey, error) {
	if len(s) > 0 && s[0] == 'S' {
		raw, err := strkey.Decode(strkey.VersionByteSeed, s)
		if err == nil {
			priv := ed25519.NewKeyFromSeed(raw)
			return PrivateKey(priv), nil
		}
	}

	k, err := solana.PrivateKeyFromBase58(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return PrivateKey(k), nil
}

// Public returns the corresponding public key.
func (k PrivateKey) Public() PublicKey {
	pub := solana.PrivateKey(k).PublicKey()
	return PublicKey(pub[:])
}

// SolanaKey converts the key into the nonce ledger's native type.
func (k PrivateKey) SolanaKey() solana.PrivateKey {
	return solana.PrivateKey(k)
}

// StellarKeypair converts the key into a sequence-ledger signing keypair.
func (k PrivateKey) StellarKeypair() (*keypair.Full, error) {
	if len(k) < ed25519.SeedSize {
		return nil, fmt.Errorf("private key too short: %d", len(k))
	}
	var seed [32]byte
	copy(seed[:], k[:ed25519.SeedSize])
	return keypair.FromRawSeed(seed)
}
