package domain

import "encoding/json"

// Signaling event types carried over the relay websocket. The relay
// routes these by recipient and never inspects the payload.
const (
	SignalAuth       = "auth"
	SignalOffer      = "call:offer"
	SignalAnswer     = "call:answer"
	SignalIce        = "call:ice"
	SignalNewMessage = "message:new"
)

// ClientSignal is what an authenticated connection sends to the relay:
// an event type, the target user, and an opaque payload (an SDP body or
// an ICE candidate, depending on Type).
type ClientSignal struct {
	Type      string          `json:"type"`
	ToUserID  UserID          `json:"toUserId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// ServerSignal is what the relay delivers to the target user's
// connections: the same payload, re-tagged with the sender's identity.
type ServerSignal struct {
	Type       string          `json:"type"`
	FromUserID UserID          `json:"fromUserId,omitempty"`
	SDP        json.RawMessage `json:"sdp,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	Message    *StoredMessage  `json:"message,omitempty"`
}

// AuthSignal is the first frame a client sends after connecting; until
// it is accepted the connection is unauthenticated and every other
// signal from it is dropped.
type AuthSignal struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}
