// Package commands defines the sotto CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init       Create the local identity key pair
//   - fingerprint Print the identity fingerprint
//   - register   Create an account and publish the public key
//   - login      Re-authenticate an existing account
//   - whoami     Show the logged-in profile
//   - users      List the user directory
//   - send       Encrypt and send a text message
//   - messages   Fetch and decrypt a conversation
//   - listen     Print live message notifications
//   - call       Start an encrypted voice call
//   - answer     Answer an incoming voice call
//
// # Implementation
//
// The root command builds a dependency graph (keyring, server client)
// before any subcommand runs, so handlers share one app context. All
// plaintext and secret keys stay on this side of the wire: the server
// only ever sees public keys, sealed envelopes and SDP.
package commands
