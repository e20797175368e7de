// Package domain holds the shared types, interfaces and error taxonomy
// used across sotto.
//
// Contents
//
//   - Fixed-size key types (PublicKey, SecretKey, SharedKey, CallKey)
//   - Server records (User, Session, StoredMessage) and the wire-level
//     message envelope (MessageBox)
//   - Signaling event payloads (Offer, Answer, IceCandidate)
//   - Store, directory and relay interfaces implemented elsewhere
//
// Nothing in this package performs I/O or cryptography; it only defines
// the vocabulary the other packages speak.
package domain
