package frame

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"sotto/internal/domain"
)

// IVSize is the AES-GCM IV length prefixed to every sealed payload.
const IVSize = 12

// Cipher seals and opens single frame payloads under one call key. It
// is safe for concurrent use: the key is immutable once constructed and
// every call draws its own IV.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a frame cipher for one call.
func NewCipher(key domain.CallKey) (*Cipher, error) {
	block, err := aes.NewCipher(key.Slice())
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// EncryptFrame seals one encoded frame payload and returns
// IV || ciphertext+tag. The payload may be any length, including empty.
func (c *Cipher) EncryptFrame(payload []byte) ([]byte, error) {
	iv := make([]byte, IVSize, IVSize+len(payload)+c.aead.Overhead())
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return c.aead.Seal(iv, iv, payload, nil), nil
}

// DecryptFrame splits IV and ciphertext, verifies and decrypts. A
// payload no longer than an IV cannot carry a sealed frame and fails
// with domain.ErrFrameTooShort; a tag mismatch fails with
// domain.ErrAuthenticationFailed. Failed frames must be dropped by the
// caller, not forwarded.
func (c *Cipher) DecryptFrame(payload []byte) ([]byte, error) {
	if len(payload) <= IVSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFrameTooShort, len(payload))
	}
	iv, ct := payload[:IVSize], payload[IVSize:]
	pt, err := c.aead.Open(nil, iv, ct, nil)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}
	return pt, nil
}
