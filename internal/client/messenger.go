package client

import (
	"context"
	"fmt"
	"sync"

	"sotto/internal/crypto"
	"sotto/internal/domain"
	"sotto/internal/protocol/seal"
)

// DecryptionPlaceholder is shown for an envelope that fails
// authentication. The broken envelope is neither omitted nor rendered
// as garbled bytes.
const DecryptionPlaceholder = "[undecryptable message]"

// Message is one conversation entry after the envelope has been
// processed locally.
type Message struct {
	domain.StoredMessage
	Text      string
	Decrypted bool
}

// Messenger seals and opens conversation messages for one local
// identity. Shared keys are derived on first use per peer and cached
// for the life of the Messenger (one conversation view); they are
// never persisted.
type Messenger struct {
	api  *API
	self domain.UserID
	keys domain.KeyPair

	mu     sync.Mutex
	shared map[domain.UserID]domain.SharedKey
}

// NewMessenger builds a messenger around an authenticated API client
// and the local identity key pair.
func NewMessenger(api *API, self domain.UserID, keys domain.KeyPair) *Messenger {
	return &Messenger{
		api:    api,
		self:   self,
		keys:   keys,
		shared: make(map[domain.UserID]domain.SharedKey),
	}
}

// SharedWith returns the conversation key for peer, fetching the peer's
// public key from the directory on first use.
func (m *Messenger) SharedWith(ctx context.Context, peer domain.UserID) (domain.SharedKey, error) {
	m.mu.Lock()
	if k, ok := m.shared[peer]; ok {
		m.mu.Unlock()
		return k, nil
	}
	m.mu.Unlock()

	pub, err := m.api.PublicKey(ctx, peer)
	if err != nil {
		return domain.SharedKey{}, fmt.Errorf("fetch peer key: %w", err)
	}
	k := crypto.SharedKey(m.keys.Secret, pub)

	m.mu.Lock()
	m.shared[peer] = k
	m.mu.Unlock()
	return k, nil
}

// Send seals plaintext for peer and posts it.
func (m *Messenger) Send(ctx context.Context, peer domain.UserID, plaintext string) (domain.StoredMessage, error) {
	k, err := m.SharedWith(ctx, peer)
	if err != nil {
		return domain.StoredMessage{}, err
	}
	mb, err := seal.Seal(k, []byte(plaintext))
	if err != nil {
		return domain.StoredMessage{}, err
	}
	return m.api.SendMessage(ctx, peer, mb)
}

// History fetches the conversation with peer and opens every envelope.
// An envelope that fails authentication becomes a placeholder entry;
// the failure is terminal for that one message only.
func (m *Messenger) History(ctx context.Context, peer domain.UserID) ([]Message, error) {
	k, err := m.SharedWith(ctx, peer)
	if err != nil {
		return nil, err
	}
	stored, err := m.api.Messages(ctx, peer)
	if err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(stored))
	for _, sm := range stored {
		msg := Message{StoredMessage: sm}
		if pt, err := seal.Open(k, sm.Ciphertext, sm.Nonce); err == nil {
			msg.Text = string(pt)
			msg.Decrypted = true
		} else {
			msg.Text = DecryptionPlaceholder
		}
		out = append(out, msg)
	}
	return out, nil
}
