package crypto

import (
	"encoding/base64"
	"fmt"

	"sotto/internal/domain"
)

// B64 returns standard base64 without line breaks, the transport
// encoding for all key and envelope bytes.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// ParsePublicKey decodes a base64 Curve25519 public key as fetched from
// the directory.
func ParsePublicKey(s string) (domain.PublicKey, error) {
	var pub domain.PublicKey
	if err := parseKey(s, pub[:]); err != nil {
		return domain.PublicKey{}, err
	}
	return pub, nil
}

// ParseSecretKey decodes a base64 Curve25519 secret key from the local
// keyring.
func ParseSecretKey(s string) (domain.SecretKey, error) {
	var sec domain.SecretKey
	if err := parseKey(s, sec[:]); err != nil {
		return domain.SecretKey{}, err
	}
	return sec, nil
}

func parseKey(s string, dst []byte) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("%w: got %d bytes, want %d", domain.ErrInvalidKeyMaterial, len(raw), len(dst))
	}
	copy(dst, raw)
	return nil
}
