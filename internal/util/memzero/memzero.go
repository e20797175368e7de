// Package memzero wipes key material from buffers that are done with
// it: decrypted keyring plaintext, call keys at hangup.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros. The subtle copy keeps the write from
// being elided as dead.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}
