// Package app wires application dependencies for the CLI.
//
// It builds the keyring and server client from Config and exposes them
// via the Wire struct for commands to use. Commands that act on behalf
// of a logged-in user go through Authenticated, which loads the stored
// session and unlocks the identity key.
package app
