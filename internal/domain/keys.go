package domain

// PublicKey is a Curve25519 public key. The base64 form of this value is
// what registers with the server directory; it is the only key material
// that ever leaves the device.
type PublicKey [32]byte

// Slice returns the key as a []byte.
func (p PublicKey) Slice() []byte { return p[:] }

// SecretKey is a Curve25519 secret key. It is generated locally, stored
// only in the local keyring, and never transmitted or persisted
// server-side.
type SecretKey [32]byte

// Slice returns the key as a []byte.
func (k SecretKey) Slice() []byte { return k[:] }

// SharedKey is the symmetric key derived from one party's secret key and
// the other's public key. Both sides of a conversation derive the same
// value. It lives in memory for the duration of a conversation and is
// never persisted.
type SharedKey [32]byte

// Slice returns the key as a []byte.
func (k SharedKey) Slice() []byte { return k[:] }

// CallKey is the symmetric key protecting media frames for one call. It
// is derived from the conversation's SharedKey, held in memory for the
// call's lifetime and discarded when the call ends.
type CallKey [32]byte

// Slice returns the key as a []byte.
func (k CallKey) Slice() []byte { return k[:] }

// KeyPair couples the two halves of an identity key pair.
type KeyPair struct {
	Public PublicKey
	Secret SecretKey
}
