// Package crypto exposes the key-agreement primitives used by sotto.
//
// Contents
//
//   - Curve25519 key-pair generation (GenerateKeyPair)
//   - Shared-key derivation in the NaCl box construction: X25519
//     Diffie-Hellman followed by the HSalsa20 key derivation
//     (SharedKey). The result is ready for direct use as an
//     authenticated-encryption key and is identical on both sides:
//     SharedKey(a.Secret, b.Public) == SharedKey(b.Secret, a.Public).
//   - Base64 parsing of transported key material (ParsePublicKey,
//     ParseSecretKey), failing with domain.ErrInvalidKeyMaterial
//   - Short public-key fingerprints for display (Fingerprint)
//
// All functions are pure and perform no I/O; callers are responsible
// for caching a derived shared key per conversation.
package crypto
