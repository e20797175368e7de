package relay

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sotto/internal/domain"
)

// Authenticator resolves a bearer token to a user id, failing with
// domain.ErrUnauthorized for anything missing, invalid or expired.
type Authenticator func(ctx context.Context, token string) (domain.UserID, error)

// Handler upgrades websocket connections and runs the per-connection
// signal loop against the hub.
type Handler struct {
	hub      *Hub
	auth     Authenticator
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires a websocket handler to the hub.
func NewHandler(hub *Hub, auth Authenticator, log zerolog.Logger) *Handler {
	return &Handler{
		hub:  hub,
		auth: auth,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The API is bearer-token authenticated; origin checks add
			// nothing for non-browser clients.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wsEndpoint adapts one websocket connection to the hub's Endpoint.
// gorilla/websocket allows a single concurrent writer, hence the mutex.
type wsEndpoint struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (e *wsEndpoint) Send(sig domain.ServerSignal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.WriteJSON(sig)
}

// ServeHTTP upgrades the connection and runs its lifecycle:
// Unauthenticated -> Authenticated(userID) -> bound to the routing
// group until the socket closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// First frame must authenticate; everything before that is dropped.
	var hello domain.AuthSignal
	if err := conn.ReadJSON(&hello); err != nil {
		return
	}
	if hello.Type != domain.SignalAuth {
		h.log.Debug().Str("type", hello.Type).Msg("signal before auth, closing")
		return
	}
	userID, err := h.auth(r.Context(), hello.Token)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket auth rejected")
		return
	}

	ep := &wsEndpoint{conn: conn}
	h.hub.Bind(userID, ep)
	defer h.hub.Unbind(userID, ep)
	h.log.Info().Str("user", userID.String()).Msg("signaling connection authenticated")

	for {
		var sig domain.ClientSignal
		if err := conn.ReadJSON(&sig); err != nil {
			return
		}
		h.route(userID, sig)
	}
}

// route forwards one client signal. Unknown types and missing targets
// are dropped; the relay keeps no state about them.
func (h *Handler) route(from domain.UserID, sig domain.ClientSignal) {
	switch sig.Type {
	case domain.SignalOffer, domain.SignalAnswer, domain.SignalIce:
	default:
		h.log.Debug().Str("type", sig.Type).Msg("unknown signal type dropped")
		return
	}
	if sig.ToUserID == "" {
		return
	}
	h.hub.Notify(sig.ToUserID, domain.ServerSignal{
		Type:       sig.Type,
		FromUserID: from,
		SDP:        sig.SDP,
		Candidate:  sig.Candidate,
	})
}
