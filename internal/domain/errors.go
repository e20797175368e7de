package domain

import "errors"

var (
	// ErrInvalidKeyMaterial indicates malformed key bytes or encoding.
	// It is a local error and is never surfaced to a peer.
	ErrInvalidKeyMaterial = errors.New("invalid key material")

	// ErrAuthenticationFailed indicates an AEAD tag mismatch on decrypt:
	// tampering, the wrong key, or a corrupted nonce. It aborts the
	// single decryption and nothing else.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthorized indicates a missing, invalid or expired session
	// token. It is rejected at the server boundary and never reaches the
	// crypto core.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCapabilityUnavailable indicates frame-level call encryption is
	// not supported by the local media path. Callers must surface it,
	// never assume "encrypted".
	ErrCapabilityUnavailable = errors.New("frame_encryption_unavailable")

	// ErrFrameTooShort indicates an incoming media payload shorter than
	// an IV, which cannot carry a sealed frame.
	ErrFrameTooShort = errors.New("frame too short")

	// ErrUserNotFound indicates an unknown user id or phone number.
	ErrUserNotFound = errors.New("user not found")
)
