// Package frame encrypts and decrypts individual encoded media frames
// for an active call.
//
// Each outgoing frame payload is sealed with AES-256-GCM under the call
// key and a fresh random 12-byte IV; the payload on the wire is
// IV || ciphertext+tag. Frame metadata (timestamps, sequencing) is not
// touched. Incoming payloads are split, verified and decrypted; a frame
// that fails verification is dropped and counted, never forwarded as
// audio.
//
// The streaming transforms (Encryptor, Decryptor) are explicit pipeline
// stages: one frame is read, processed and written downstream before
// the next is read, so nothing buffers unboundedly. Closing the
// upstream source propagates a close downstream; a closed downstream
// sink terminates the upstream read loop.
package frame
