package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"sotto/internal/domain"
)

// GenerateKeyPair returns a fresh Curve25519 key pair for one identity.
// The secret half stays on the device; only the public half registers
// with the directory.
func GenerateKeyPair() (domain.KeyPair, error) {
	pub, sec, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{
		Public: domain.PublicKey(*pub),
		Secret: domain.SecretKey(*sec),
	}, nil
}

// SharedKey derives the symmetric conversation key from our secret key
// and the peer's public key (X25519 followed by HSalsa20, the NaCl box
// precomputation). Deterministic and symmetric across the pair.
func SharedKey(secret domain.SecretKey, peer domain.PublicKey) domain.SharedKey {
	var shared [32]byte
	sec := [32]byte(secret)
	pub := [32]byte(peer)
	box.Precompute(&shared, &pub, &sec)
	return domain.SharedKey(shared)
}
