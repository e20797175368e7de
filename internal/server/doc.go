// Package server is the HTTP API in front of the record store: account
// registration and login, the user directory and public-key lookups,
// and storage and listing of sealed messages.
//
// Every message body it accepts or returns is ciphertext plus routing
// metadata; the server has no way to read message content. Newly stored
// messages are also pushed to the recipient's live signaling
// connections as message:new.
package server
