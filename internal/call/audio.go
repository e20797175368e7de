package call

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"sotto/internal/protocol/frame"
)

// opusFrameDuration is the packet cadence for the outgoing stream.
const opusFrameDuration = 20 * time.Millisecond

// opusSilence is a minimal Opus frame decoding to silence, used when no
// capture device feeds the call.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// SilenceSource produces silence frames at the Opus packet cadence. A
// headless client uses it in place of a microphone so the media path,
// and the frame crypto on it, stays exercised for the whole call.
type SilenceSource struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once

	seq uint16
	ts  uint32
}

// NewSilenceSource starts the clock for a silence stream.
func NewSilenceSource() *SilenceSource {
	return &SilenceSource{
		ticker: time.NewTicker(opusFrameDuration),
		done:   make(chan struct{}),
	}
}

// ReadFrame blocks until the next tick and returns one silence frame
// with advancing sequence and timestamp. After Close it returns io.EOF.
func (s *SilenceSource) ReadFrame() (frame.Frame, error) {
	select {
	case <-s.done:
		return frame.Frame{}, io.EOF
	case <-s.ticker.C:
	}
	f := frame.Frame{
		Payload:   opusSilence,
		Sequence:  s.seq,
		Timestamp: s.ts,
	}
	s.seq++
	s.ts += 960 // 20ms at 48kHz
	return f, nil
}

// Close stops the stream; a blocked ReadFrame returns io.EOF.
func (s *SilenceSource) Close() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

// CountingSink discards verified inbound frames and counts them, for
// clients with no playback device.
type CountingSink struct {
	frames atomic.Uint64
	bytes  atomic.Uint64
}

func (c *CountingSink) WriteFrame(f frame.Frame) error {
	c.frames.Add(1)
	c.bytes.Add(uint64(len(f.Payload)))
	return nil
}

func (c *CountingSink) Close() error { return nil }

// Frames reports how many verified frames arrived.
func (c *CountingSink) Frames() uint64 { return c.frames.Load() }

// Bytes reports the total verified payload volume.
func (c *CountingSink) Bytes() uint64 { return c.bytes.Load() }
