// Package callkey derives the per-call media key from a conversation's
// shared key.
//
// The derivation is a labeled one-way HKDF step rather than a raw
// import of the shared key, so holding a call key never reveals the
// conversation root. Both participants recompute the same call key from
// the shared key they already hold; no extra network round trip is
// required. Call keys live in memory for one call and are discarded
// when it ends.
package callkey

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"sotto/internal/domain"
)

// label domain-separates call keys from any other use of the shared key.
const label = "sotto v1 call key"

// Derive computes the AES-256-GCM key for one call from the
// conversation's shared key. Deterministic: both sides derive the same
// value with no handshake.
func Derive(shared domain.SharedKey) (domain.CallKey, error) {
	var key domain.CallKey
	r := hkdf.New(sha256.New, shared.Slice(), nil, []byte(label))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return domain.CallKey{}, err
	}
	return key, nil
}
