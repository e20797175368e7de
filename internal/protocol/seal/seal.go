package seal

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"sotto/internal/domain"
)

// NonceSize is the nonce length required by XSalsa20-Poly1305.
const NonceSize = 24

// Seal encrypts plaintext under the shared key with a fresh random
// nonce and returns the transportable envelope. Every call draws a new
// nonce; identical plaintexts never produce identical envelopes.
func Seal(key domain.SharedKey, plaintext []byte) (domain.MessageBox, error) {
	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return domain.MessageBox{}, err
	}
	shared := [32]byte(key)
	ct := box.SealAfterPrecomputation(nil, plaintext, &nonce, &shared)
	return domain.MessageBox{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
	}, nil
}

// Open verifies and decrypts an envelope. It fails with
// domain.ErrAuthenticationFailed on any tag mismatch (tampering, wrong
// key, corrupted nonce) and has no side effects.
func Open(key domain.SharedKey, ciphertextB64, nonceB64 string) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	rawNonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	if len(rawNonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes, want %d", domain.ErrAuthenticationFailed, len(rawNonce), NonceSize)
	}
	var nonce [NonceSize]byte
	copy(nonce[:], rawNonce)

	shared := [32]byte(key)
	pt, ok := box.OpenAfterPrecomputation(nil, ct, &nonce, &shared)
	if !ok {
		return nil, domain.ErrAuthenticationFailed
	}
	return pt, nil
}

// OpenBox is Open applied to an already-assembled envelope.
func OpenBox(key domain.SharedKey, mb domain.MessageBox) ([]byte, error) {
	return Open(key, mb.Ciphertext, mb.Nonce)
}
