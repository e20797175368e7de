// Package client talks to the sotto server on behalf of the CLI.
//
// API is a plain JSON-over-HTTP client for the account, directory and
// message endpoints; it attaches the bearer token and turns non-2xx
// statuses into errors. Messenger layers the end-to-end crypto on top:
// it fetches peer keys, derives the per-conversation shared key, seals
// outgoing text and opens incoming envelopes. An envelope that fails
// authentication renders as a placeholder; it is never shown as garbled
// text and never aborts the rest of the conversation.
package client
