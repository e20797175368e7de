// Package seal is the authenticated codec for text messages.
//
// Seal encrypts a UTF-8 plaintext under a conversation's shared key
// with XSalsa20-Poly1305 and a fresh random 24-byte nonce; Open
// verifies and decrypts. A failed tag check is a hard error
// (domain.ErrAuthenticationFailed) and never yields partial plaintext.
// Both halves of the envelope travel base64-encoded and self-contained,
// so decryption is idempotent and safe to retry.
package seal
