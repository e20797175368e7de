// Package keyring is the client's local-only storage for identity key
// material and the current server session.
//
// The identity key pair is generated once per device and encrypted at
// rest with ChaCha20-Poly1305 under a key derived from the user's
// passphrase via scrypt. The secret half never leaves this directory.
// The session file holds the opaque bearer token and the registered
// profile so the CLI can authenticate API calls between runs.
package keyring
