package frame

// StateKind enumerates the per-call encryption states. The media
// pipeline must consult the state explicitly; there is no silent
// fall-through from Encrypting to plaintext.
type StateKind int

const (
	// Unencrypted means the local media path cannot intercept frames;
	// media travels without the frame layer and the capability string
	// must be surfaced to the caller.
	Unencrypted StateKind = iota
	// Encrypting means the frame cipher is active for both directions.
	Encrypting
	// Failed means the frame layer was requested but could not be set
	// up; the call must not proceed as if it were encrypted.
	Failed
)

// CapabilityUnavailable is the capability string surfaced when frame
// encryption is not in effect.
const CapabilityUnavailable = "frame_encryption_unavailable"

// State is the tagged per-call encryption state.
type State struct {
	Kind   StateKind
	Reason error // set whenever Kind != Encrypting
}

// Capability reports the capability string for UI signaling, or empty
// when the frame layer is active.
func (s State) Capability() string {
	if s.Kind == Encrypting {
		return ""
	}
	return CapabilityUnavailable
}

// Encrypted reports whether frames are actually protected.
func (s State) Encrypted() bool { return s.Kind == Encrypting }
