// Package main runs sottod, the sotto server: the HTTP API plus the
// websocket signaling relay, backed by SQLite.
//
// HTTP API (under /api)
//
//	POST /api/register
//	    Create an account (or re-issue a token if the phone exists) and
//	    record the published Curve25519 public key.
//
//	POST /api/login
//	    Re-authenticate an existing phone; returns a fresh token.
//
//	GET  /api/me
//	GET  /api/users
//	GET  /api/users/{id}/key
//	GET  /api/messages/{peerId}
//	POST /api/messages
//
// Signaling
//
//	GET /ws
//	    Websocket endpoint. The first frame must be an auth signal with
//	    a valid bearer token; after that, call:offer, call:answer and
//	    call:ice signals are routed to the target user's connections,
//	    re-tagged with the sender's id.
//
// Behaviour
//
//   - The server stores only public keys, sealed envelopes and session
//     tokens. It never sees plaintext, secret keys or call keys.
//   - With an empty database path state is held in memory and lost on
//     exit, which is handy for development.
//   - Settings come from an optional TOML file, overridden by flags.
package main
