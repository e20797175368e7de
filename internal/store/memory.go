package store

import (
	"context"
	"sort"
	"sync"

	"sotto/internal/domain"
)

// Memory implements domain.RecordStore in process memory. It backs
// tests and disposable deployments.
type Memory struct {
	mu       sync.RWMutex
	users    map[domain.UserID]domain.User
	byPhone  map[string]domain.UserID
	sessions map[string]domain.Session
	messages []domain.StoredMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[domain.UserID]domain.User),
		byPhone:  make(map[string]domain.UserID),
		sessions: make(map[string]domain.Session),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.byPhone[u.Phone] = u.ID
	return nil
}

func (m *Memory) UserByID(_ context.Context, id domain.UserID) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *Memory) UserByPhone(_ context.Context, phone string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPhone[phone]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *Memory) CreateSession(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *Memory) SessionByToken(_ context.Context, token string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok, nil
}

func (m *Memory) StoreMessage(_ context.Context, msg domain.StoredMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *Memory) ListMessages(_ context.Context, a, b domain.UserID) ([]domain.StoredMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.StoredMessage
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

var _ domain.RecordStore = (*Memory)(nil)
