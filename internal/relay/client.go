package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"sotto/internal/domain"
)

// Client is the client side of the signaling relay: one authenticated
// websocket connection plus typed send helpers. Incoming signals are
// delivered on Signals in arrival order; callers must tolerate ICE
// candidates arriving before or after the answer.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	signals chan domain.ServerSignal

	closeOnce sync.Once
}

// Dial connects to the relay websocket endpoint and authenticates with
// the bearer token. The returned client is live: its read loop is
// already running.
func Dial(ctx context.Context, url, token string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	if err := conn.WriteJSON(domain.AuthSignal{Type: domain.SignalAuth, Token: token}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticate relay: %w", err)
	}

	c := &Client{
		conn:    conn,
		signals: make(chan domain.ServerSignal, 16),
	}
	go c.readLoop()
	return c, nil
}

// Signals is the stream of signals addressed to this user. It is closed
// when the connection drops.
func (c *Client) Signals() <-chan domain.ServerSignal { return c.signals }

// SendOffer sends a call offer to the peer.
func (c *Client) SendOffer(to domain.UserID, sdp json.RawMessage) error {
	return c.send(domain.ClientSignal{Type: domain.SignalOffer, ToUserID: to, SDP: sdp})
}

// SendAnswer sends a call answer to the peer.
func (c *Client) SendAnswer(to domain.UserID, sdp json.RawMessage) error {
	return c.send(domain.ClientSignal{Type: domain.SignalAnswer, ToUserID: to, SDP: sdp})
}

// SendIce sends one ICE candidate to the peer.
func (c *Client) SendIce(to domain.UserID, candidate json.RawMessage) error {
	return c.send(domain.ClientSignal{Type: domain.SignalIce, ToUserID: to, Candidate: candidate})
}

// Close tears down the connection; the Signals channel closes shortly
// after.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.conn.Close() })
	return err
}

func (c *Client) send(sig domain.ClientSignal) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(sig)
}

func (c *Client) readLoop() {
	defer close(c.signals)
	for {
		var sig domain.ServerSignal
		if err := c.conn.ReadJSON(&sig); err != nil {
			return
		}
		c.signals <- sig
	}
}
