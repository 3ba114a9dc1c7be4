package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKey is a 32-byte on-chain account identity (a Solana public key).
type PublicKey [32]byte

// PublicKeyFromBase58 parses a base58-encoded public key string.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("domain: decode public key %q: %w", s, err)
	}
	if len(raw) != len(pk) {
		return pk, fmt.Errorf("domain: public key %q: %w", s, ErrBadKeyLength)
	}
	copy(pk[:], raw)
	return pk, nil
}

// String returns the base58 encoding of the key.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Short returns a truncated display form ("4Nd1…Wxyz") used when no creator
// profile supplies a display name for the wallet.
func (pk PublicKey) Short() string {
	s := pk.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// IsZero reports whether the key is the all-zero key.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalText encodes the key as base58 so it is readable in JSON payloads
// and usable as a JSON map key.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText decodes a base58-encoded key.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := PublicKeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// RawAccount is one account snapshot as fetched from the ledger: the account's
// public key plus its verbatim data payload, discriminator prefix included.
type RawAccount struct {
	Pubkey PublicKey
	Data   []byte
}
