package call

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"sotto/internal/domain"
	"sotto/internal/protocol/callkey"
	"sotto/internal/protocol/frame"
	"sotto/internal/relay"
	"sotto/internal/util/memzero"
)

// Signaler carries offer/answer/ICE messages to the peer. The relay
// client is the production implementation.
type Signaler interface {
	SendOffer(to domain.UserID, sdp json.RawMessage) error
	SendAnswer(to domain.UserID, sdp json.RawMessage) error
	SendIce(to domain.UserID, candidate json.RawMessage) error
}

var _ Signaler = (*relay.Client)(nil)

var defaultICEURLs = []string{"stun:stun.l.google.com:19302"}

// Config assembles one call session.
type Config struct {
	Peer    domain.UserID
	Shared  domain.SharedKey
	Signals Signaler

	// Mic produces encoded outgoing audio; Speaker consumes verified
	// incoming audio.
	Mic     frame.Source
	Speaker frame.Sink

	// NoFrameCrypto runs the media path without the frame layer, for a
	// local pipeline that cannot intercept frames. The session then
	// reports the unavailable capability instead of pretending.
	NoFrameCrypto bool

	ICEURLs []string
	Log     zerolog.Logger
}

// Session is one voice call with one peer, from first offer to
// teardown. Create with New, then either Offer (caller side) or wait
// for the peer's offer via HandleSignal (callee side).
type Session struct {
	cfg Config
	log zerolog.Logger

	key domain.CallKey
	enc *frame.Encryptor
	dec *frame.Decryptor

	pc         *webrtc.PeerConnection
	localTrack *webrtc.TrackLocalStaticRTP

	mu         sync.Mutex
	state      frame.State
	remoteSet  bool
	pendingICE []webrtc.ICECandidateInit

	cancel  context.CancelFunc
	endOnce sync.Once
}

// New derives the call key, sets up the frame cipher and builds the
// peer connection. The media pumps start when signaling starts, in
// Offer or HandleOffer.
func New(cfg Config) (*Session, error) {
	if cfg.Signals == nil {
		return nil, errors.New("call: signaler required")
	}
	if len(cfg.ICEURLs) == 0 {
		cfg.ICEURLs = defaultICEURLs
	}

	s := &Session{
		cfg: cfg,
		log: cfg.Log.With().Str("peer", cfg.Peer.String()).Logger(),
	}

	if cfg.NoFrameCrypto {
		s.state = frame.State{Kind: frame.Unencrypted, Reason: domain.ErrCapabilityUnavailable}
	} else {
		key, err := callkey.Derive(cfg.Shared)
		if err != nil {
			return nil, fmt.Errorf("derive call key: %w", err)
		}
		cipher, err := frame.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("frame cipher: %w", err)
		}
		s.key = key
		s.enc = frame.NewEncryptor(cipher)
		s.dec = frame.NewDecryptor(cipher)
		s.state = frame.State{Kind: frame.Encrypting}
	}

	if err := s.buildPeer(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) buildPeer() error {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: s.cfg.ICEURLs}},
	})
	if err != nil {
		return fmt.Errorf("peer connection: %w", err)
	}

	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio", "sotto-mic")
	if err != nil {
		pc.Close()
		return fmt.Errorf("local track: %w", err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		pc.Close()
		return fmt.Errorf("add track: %w", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		b, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		if err := s.cfg.Signals.SendIce(s.cfg.Peer, b); err != nil {
			s.log.Warn().Err(err).Msg("send ice candidate")
		}
	})
	pc.OnConnectionStateChange(func(st webrtc.PeerConnectionState) {
		s.log.Debug().Str("state", st.String()).Msg("peer connection")
		if st == webrtc.PeerConnectionStateFailed {
			s.End()
		}
	})

	s.pc = pc
	s.localTrack = track
	return nil
}

// Offer starts the call as the initiating side: it creates and sends
// the SDP offer and starts the media pumps.
func (s *Session) Offer(ctx context.Context) error {
	s.start(ctx)

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	b, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	return s.cfg.Signals.SendOffer(s.cfg.Peer, b)
}

// HandleSignal applies one relay signal to the session. Signals from
// any user other than the session's peer are ignored.
func (s *Session) HandleSignal(ctx context.Context, sig domain.ServerSignal) error {
	if sig.FromUserID != s.cfg.Peer {
		return nil
	}
	switch sig.Type {
	case domain.SignalOffer:
		return s.HandleOffer(ctx, sig.SDP)
	case domain.SignalAnswer:
		return s.HandleAnswer(sig.SDP)
	case domain.SignalIce:
		return s.HandleIce(sig.Candidate)
	default:
		return nil
	}
}

// HandleOffer answers an incoming call: it applies the remote offer,
// flushes any ICE candidates that raced ahead of it, sends the answer
// and starts the media pumps.
func (s *Session) HandleOffer(ctx context.Context, sdp json.RawMessage) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(sdp, &desc); err != nil {
		return fmt.Errorf("decode offer: %w", err)
	}
	if err := s.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	if err := s.flushPendingICE(); err != nil {
		return err
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	b, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	if err := s.cfg.Signals.SendAnswer(s.cfg.Peer, b); err != nil {
		return err
	}

	s.start(ctx)
	return nil
}

// HandleAnswer completes the offer side of the handshake.
func (s *Session) HandleAnswer(sdp json.RawMessage) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(sdp, &desc); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	if err := s.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return s.flushPendingICE()
}

// HandleIce applies one trickled candidate from the peer. Candidates
// that arrive before the remote description are queued, not dropped.
func (s *Session) HandleIce(candidate json.RawMessage) error {
	var init webrtc.ICECandidateInit
	if err := json.Unmarshal(candidate, &init); err != nil {
		return fmt.Errorf("decode ice candidate: %w", err)
	}

	s.mu.Lock()
	if !s.remoteSet {
		s.pendingICE = append(s.pendingICE, init)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.pc.AddICECandidate(init)
}

func (s *Session) flushPendingICE() error {
	s.mu.Lock()
	s.remoteSet = true
	pending := s.pendingICE
	s.pendingICE = nil
	s.mu.Unlock()

	for _, init := range pending {
		if err := s.pc.AddICECandidate(init); err != nil {
			return fmt.Errorf("apply queued candidate: %w", err)
		}
	}
	return nil
}

func (s *Session) start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	go s.runOutbound(ctx)
	s.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		go s.runInbound(ctx, track)
	})
}

func (s *Session) runOutbound(ctx context.Context) {
	dst := &trackSink{track: s.localTrack}
	var err error
	if s.enc != nil {
		err = s.enc.Run(ctx, s.cfg.Mic, dst)
	} else {
		err = pump(ctx, s.cfg.Mic, dst)
	}
	s.finishPump("outbound", err)
}

func (s *Session) runInbound(ctx context.Context, track *webrtc.TrackRemote) {
	src := &trackSource{track: track}
	var err error
	if s.dec != nil {
		err = s.dec.Run(ctx, src, s.cfg.Speaker)
	} else {
		err = pump(ctx, src, s.cfg.Speaker)
	}
	s.finishPump("inbound", err)
}

// finishPump records a pump outcome. A mid-call transform failure
// poisons the session: the call ends rather than continuing with an
// uncertain media path.
func (s *Session) finishPump(dir string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.log.Error().Err(err).Str("direction", dir).Msg("media pump failed")
	s.mu.Lock()
	s.state = frame.State{Kind: frame.Failed, Reason: err}
	s.mu.Unlock()
	s.End()
}

// State reports the session's encryption state.
func (s *Session) State() frame.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DroppedFrames reports how many inbound frames failed verification.
func (s *Session) DroppedFrames() uint64 {
	if s.dec == nil {
		return 0
	}
	return s.dec.Dropped()
}

// End tears the call down: pumps stop, the peer connection closes and
// the call key is wiped. Safe to call more than once.
func (s *Session) End() error {
	var err error
	s.endOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		err = s.pc.Close()
		memzero.Zero(s.key[:])
	})
	return err
}
