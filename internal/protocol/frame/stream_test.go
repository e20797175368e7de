package frame_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"sotto/internal/protocol/frame"
)

// chanSource feeds frames from a channel; a closed channel reads as EOF.
type chanSource struct {
	ch chan frame.Frame
}

func (s *chanSource) ReadFrame() (frame.Frame, error) {
	f, ok := <-s.ch
	if !ok {
		return frame.Frame{}, io.EOF
	}
	return f, nil
}

// sliceSink collects frames and records whether it was closed.
type sliceSink struct {
	frames []frame.Frame
	closed bool
	limit  int // if > 0, WriteFrame fails once len(frames) == limit
}

func (s *sliceSink) WriteFrame(f frame.Frame) error {
	if s.limit > 0 && len(s.frames) >= s.limit {
		return io.ErrClosedPipe
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *sliceSink) Close() error {
	s.closed = true
	return nil
}

func TestPipeline_EncryptThenDecrypt(t *testing.T) {
	c, err := frame.NewCipher(callKey(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	payloads := [][]byte{
		[]byte("frame one"),
		[]byte("frame two"),
		{},
		bytes.Repeat([]byte{0xAB}, 960),
	}

	src := &chanSource{ch: make(chan frame.Frame, len(payloads))}
	for i, p := range payloads {
		src.ch <- frame.Frame{Payload: p, Sequence: uint16(i), Timestamp: uint32(i * 960)}
	}
	close(src.ch)

	sealedSink := &sliceSink{}
	if err := frame.NewEncryptor(c).Run(context.Background(), src, sealedSink); err != nil {
		t.Fatalf("Encryptor.Run: %v", err)
	}
	if !sealedSink.closed {
		t.Fatal("upstream close did not propagate to the sealed sink")
	}
	if len(sealedSink.frames) != len(payloads) {
		t.Fatalf("sealed %d frames, want %d", len(sealedSink.frames), len(payloads))
	}

	// Metadata passes through untouched.
	for i, f := range sealedSink.frames {
		if f.Sequence != uint16(i) || f.Timestamp != uint32(i*960) {
			t.Fatalf("frame %d metadata rewritten: seq=%d ts=%d", i, f.Sequence, f.Timestamp)
		}
	}

	src2 := &chanSource{ch: make(chan frame.Frame, len(sealedSink.frames))}
	for _, f := range sealedSink.frames {
		src2.ch <- f
	}
	close(src2.ch)

	clearSink := &sliceSink{}
	dec := frame.NewDecryptor(c)
	if err := dec.Run(context.Background(), src2, clearSink); err != nil {
		t.Fatalf("Decryptor.Run: %v", err)
	}
	if !clearSink.closed {
		t.Fatal("upstream close did not propagate to the clear sink")
	}
	if dec.Dropped() != 0 {
		t.Fatalf("dropped %d frames on a clean stream", dec.Dropped())
	}
	for i, f := range clearSink.frames {
		if !bytes.Equal(f.Payload, payloads[i]) {
			t.Fatalf("frame %d did not round-trip", i)
		}
	}
}

func TestPipeline_BadFrameDroppedNotForwarded(t *testing.T) {
	c, err := frame.NewCipher(callKey(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	good, err := c.EncryptFrame([]byte("good"))
	if err != nil {
		t.Fatalf("EncryptFrame: %v", err)
	}
	bad := bytes.Clone(good)
	bad[len(bad)-1] ^= 0xFF

	src := &chanSource{ch: make(chan frame.Frame, 3)}
	src.ch <- frame.Frame{Payload: good, Sequence: 1}
	src.ch <- frame.Frame{Payload: bad, Sequence: 2}
	src.ch <- frame.Frame{Payload: []byte("tiny"), Sequence: 3} // shorter than an IV
	close(src.ch)

	sink := &sliceSink{}
	dec := frame.NewDecryptor(c)
	if err := dec.Run(context.Background(), src, sink); err != nil {
		t.Fatalf("Decryptor.Run: %v", err)
	}

	// Only the good frame comes out; the stream is not stalled by the
	// bad ones.
	if len(sink.frames) != 1 || sink.frames[0].Sequence != 1 {
		t.Fatalf("forwarded frames = %+v, want only seq 1", sink.frames)
	}
	if dec.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", dec.Dropped())
	}
}

func TestPipeline_DownstreamCloseStopsReadLoop(t *testing.T) {
	c, err := frame.NewCipher(callKey(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	src := &chanSource{ch: make(chan frame.Frame, 4)}
	for i := 0; i < 4; i++ {
		src.ch <- frame.Frame{Payload: []byte("x")}
	}
	close(src.ch)

	sink := &sliceSink{limit: 2}
	if err := frame.NewEncryptor(c).Run(context.Background(), src, sink); err != nil {
		t.Fatalf("Encryptor.Run: %v", err)
	}
	if len(sink.frames) != 2 {
		t.Fatalf("wrote %d frames past a closed sink", len(sink.frames))
	}
	// The remaining frames were left unread.
	if got := len(src.ch); got != 2 {
		t.Fatalf("read loop kept pulling: %d frames left, want 2", got)
	}
}

func TestPipeline_ContextCancel(t *testing.T) {
	c, err := frame.NewCipher(callKey(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &chanSource{ch: make(chan frame.Frame, 1)}
	src.ch <- frame.Frame{Payload: []byte("x")}
	sink := &sliceSink{}
	if err := frame.NewEncryptor(c).Run(ctx, src, sink); err == nil {
		t.Fatal("want context error after cancel")
	}
	if !sink.closed {
		t.Fatal("cancelled transform did not close downstream")
	}
}

func TestState_Capability(t *testing.T) {
	if (frame.State{Kind: frame.Encrypting}).Capability() != "" {
		t.Fatal("active frame layer must not surface a capability string")
	}
	if got := (frame.State{Kind: frame.Unencrypted}).Capability(); got != frame.CapabilityUnavailable {
		t.Fatalf("capability = %q, want %q", got, frame.CapabilityUnavailable)
	}
	if (frame.State{Kind: frame.Failed}).Encrypted() {
		t.Fatal("failed state must not report as encrypted")
	}
}
