package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"sotto/internal/domain"
)

// Endpoint is one authenticated connection able to receive signals.
type Endpoint interface {
	Send(domain.ServerSignal) error
}

// Hub owns the routing table from user ids to their live connections.
// The table is mutated only on connect and disconnect and read during
// fan-out; there is no other shared state.
type Hub struct {
	log zerolog.Logger

	mu     sync.RWMutex
	groups map[domain.UserID]map[Endpoint]struct{}
}

// NewHub returns an empty routing table.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:    log,
		groups: make(map[domain.UserID]map[Endpoint]struct{}),
	}
}

// Bind adds ep to the user's routing group.
func (h *Hub) Bind(id domain.UserID, ep Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.groups[id]
	if !ok {
		g = make(map[Endpoint]struct{})
		h.groups[id] = g
	}
	g[ep] = struct{}{}
	h.log.Debug().Str("user", id.String()).Int("endpoints", len(g)).Msg("endpoint bound")
}

// Unbind removes ep from the user's routing group.
func (h *Hub) Unbind(id domain.UserID, ep Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.groups[id]
	if !ok {
		return
	}
	delete(g, ep)
	if len(g) == 0 {
		delete(h.groups, id)
	}
	h.log.Debug().Str("user", id.String()).Msg("endpoint unbound")
}

// Connected reports how many endpoints are bound for the user.
func (h *Hub) Connected(id domain.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[id])
}

// Notify fans sig out to every endpoint currently bound to the user.
// An offline user means the signal is dropped; a failed endpoint write
// affects only that endpoint.
func (h *Hub) Notify(to domain.UserID, sig domain.ServerSignal) {
	h.mu.RLock()
	eps := make([]Endpoint, 0, len(h.groups[to]))
	for ep := range h.groups[to] {
		eps = append(eps, ep)
	}
	h.mu.RUnlock()

	if len(eps) == 0 {
		h.log.Debug().Str("user", to.String()).Str("type", sig.Type).Msg("recipient offline, signal dropped")
		return
	}
	for _, ep := range eps {
		if err := ep.Send(sig); err != nil {
			h.log.Warn().Err(err).Str("user", to.String()).Str("type", sig.Type).Msg("endpoint write failed")
		}
	}
}

var _ domain.Notifier = (*Hub)(nil)
