// Package call runs one encrypted voice call between two users.
//
// A Session owns the WebRTC peer connection, the signaling exchange
// (offer, answer, trickled ICE candidates through the relay) and the
// frame-layer crypto. The call key is derived locally on both sides
// from the conversation's shared key; no key material ever rides the
// signaling channel. Outgoing audio is sealed per frame before it
// reaches the RTP track, incoming payloads are verified and opened
// before playback, and frames that fail verification are dropped,
// never played.
//
// ICE candidates can arrive before the remote description; the session
// queues them and applies the queue once the description is set.
package call
