// Package relay is the stateless signaling router between call
// endpoints.
//
// The relay holds no call state. Each websocket connection starts
// unauthenticated; its first frame must be an auth signal carrying a
// bearer token. Once authenticated the connection joins the routing
// group for its user id, and offer/answer/ICE signals it sends are
// forwarded verbatim to every connection of the target user, re-tagged
// with the sender's identity. Signals from unauthenticated connections
// are dropped.
//
// Delivery is at-most-once per currently connected endpoint. There is
// no acknowledgement, no retry, no store-and-forward and no ordering
// guarantee across signal kinds; callers tolerate ICE candidates that
// arrive before or after the answer.
//
// The same routing table also carries message:new pushes from the HTTP
// API so an online recipient learns about stored messages immediately.
package relay
