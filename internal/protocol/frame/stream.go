package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// Frame is one unit of encoded media. Only Payload is protected by the
// cipher; the metadata travels as-is.
type Frame struct {
	Payload   []byte
	Timestamp uint32
	Sequence  uint16
	Marker    bool
}

// Source produces frames. ReadFrame blocks for the next frame and
// returns io.EOF once the upstream is closed.
type Source interface {
	ReadFrame() (Frame, error)
}

// Sink consumes frames. A WriteFrame error means the downstream is gone
// and the caller must stop reading from its upstream.
type Sink interface {
	WriteFrame(Frame) error
	Close() error
}

// Encryptor is the outgoing transform: it seals every frame payload
// before handing the frame downstream.
type Encryptor struct {
	cipher *Cipher
}

// NewEncryptor wraps c as the outgoing pipeline stage.
func NewEncryptor(c *Cipher) *Encryptor { return &Encryptor{cipher: c} }

// Run pumps frames from src to dst until src is exhausted, dst is
// closed, or ctx is cancelled. One frame is in flight at a time. On a
// clean upstream close it closes dst and returns nil.
func (e *Encryptor) Run(ctx context.Context, src Source, dst Sink) error {
	for {
		if err := ctx.Err(); err != nil {
			dst.Close()
			return err
		}
		f, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			return dst.Close()
		}
		if err != nil {
			dst.Close()
			return fmt.Errorf("read frame: %w", err)
		}
		sealed, err := e.cipher.EncryptFrame(f.Payload)
		if err != nil {
			dst.Close()
			return fmt.Errorf("encrypt frame: %w", err)
		}
		f.Payload = sealed
		if err := dst.WriteFrame(f); err != nil {
			// Downstream is gone; stop pulling from upstream.
			return nil
		}
	}
}

// Decryptor is the incoming transform: it opens every sealed payload
// and forwards the recovered frame. Frames that fail verification are
// dropped and counted; a single bad frame never stalls the stream or
// the call.
type Decryptor struct {
	cipher  *Cipher
	dropped atomic.Uint64
}

// NewDecryptor wraps c as the incoming pipeline stage.
func NewDecryptor(c *Cipher) *Decryptor { return &Decryptor{cipher: c} }

// Dropped reports how many inbound frames failed verification and were
// discarded.
func (d *Decryptor) Dropped() uint64 { return d.dropped.Load() }

// Run pumps frames from src to dst, decrypting each payload. Frames
// whose payload is too short or fails the tag check are not forwarded.
func (d *Decryptor) Run(ctx context.Context, src Source, dst Sink) error {
	for {
		if err := ctx.Err(); err != nil {
			dst.Close()
			return err
		}
		f, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			return dst.Close()
		}
		if err != nil {
			dst.Close()
			return fmt.Errorf("read frame: %w", err)
		}
		pt, err := d.cipher.DecryptFrame(f.Payload)
		if err != nil {
			// Undecryptable bytes are never forwarded as audio.
			d.dropped.Add(1)
			continue
		}
		f.Payload = pt
		if err := dst.WriteFrame(f); err != nil {
			return nil
		}
	}
}
