// Package store persists the server's records: user profiles, bearer
// sessions and sealed message envelopes.
//
// The SQLite implementation is the production store; Memory backs
// tests. Both only ever hold ciphertext and routing metadata for
// messages; there is no plaintext column to protect.
package store
