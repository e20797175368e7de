package call

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"sotto/internal/protocol/frame"
)

// packetFrame lifts one RTP packet into the frame pipeline. Only the
// payload is touched by the cipher; the timing metadata rides along so
// the receiving side can rebuild a well-formed packet.
func packetFrame(p *rtp.Packet) frame.Frame {
	return frame.Frame{
		Payload:   p.Payload,
		Timestamp: p.Timestamp,
		Sequence:  p.SequenceNumber,
		Marker:    p.Marker,
	}
}

// framePacket rebuilds an RTP packet around a processed frame. SSRC and
// payload type are left zero; the bound track fills them in on write.
func framePacket(f frame.Frame) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         f.Marker,
			SequenceNumber: f.Sequence,
			Timestamp:      f.Timestamp,
		},
		Payload: f.Payload,
	}
}

// trackSource adapts a remote RTP track to the frame pipeline.
type trackSource struct {
	track *webrtc.TrackRemote
}

func (s *trackSource) ReadFrame() (frame.Frame, error) {
	pkt, _, err := s.track.ReadRTP()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return frame.Frame{}, io.EOF
		}
		return frame.Frame{}, fmt.Errorf("read rtp: %w", err)
	}
	return packetFrame(pkt), nil
}

// trackSink adapts the local RTP track to the frame pipeline. Closing
// the sink is a no-op: the track's lifetime belongs to the peer
// connection.
type trackSink struct {
	track *webrtc.TrackLocalStaticRTP
}

func (s *trackSink) WriteFrame(f frame.Frame) error {
	return s.track.WriteRTP(framePacket(f))
}

func (s *trackSink) Close() error { return nil }

// pump moves frames from src to dst untouched. It is the media path
// for a call that runs without the frame layer; the session surfaces
// that state to the caller separately.
func pump(ctx context.Context, src frame.Source, dst frame.Sink) error {
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
		if err := dst.WriteFrame(f); err != nil {
			return nil
		}
	}
}
