package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"sotto/internal/domain"
)

// Server serves the JSON API over the record store and pushes
// message:new signals through the notifier.
type Server struct {
	store    domain.RecordStore
	notifier domain.Notifier
	log      zerolog.Logger
}

// New builds the API server.
func New(store domain.RecordStore, notifier domain.Notifier, log zerolog.Logger) *Server {
	return &Server{store: store, notifier: notifier, log: log}
}

// Routes mounts all API endpoints on a fresh router. The websocket
// endpoint is mounted by the caller so this package stays transport
// agnostic.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/users", s.requireAuth(s.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/key", s.requireAuth(s.handleUserKey)).Methods(http.MethodGet)
	api.HandleFunc("/messages/{peerId}", s.requireAuth(s.handleListMessages)).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.requireAuth(s.handlePostMessage)).Methods(http.MethodPost)
	return r
}

type registerBody struct {
	Phone       string `json:"phone"`
	DisplayName string `json:"displayName"`
	PublicKey   string `json:"publicKey"`
}

func (b registerBody) valid() bool {
	return len(b.Phone) >= 5 && b.DisplayName != "" && len(b.DisplayName) <= 50 && len(b.PublicKey) >= 32
}

// handleRegister creates a user, or treats an existing phone as a
// login and re-issues a token. Only the public key half ever arrives
// here.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.valid() {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ctx := r.Context()

	if existing, ok, err := s.store.UserByPhone(ctx, body.Phone); err != nil {
		s.fail(w, err)
		return
	} else if ok {
		sess, err := s.createSession(ctx, existing.ID)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, map[string]any{"user": existing, "token": sess.Token})
		return
	}

	user := domain.User{
		ID:          domain.UserID(uuid.NewString()),
		Phone:       body.Phone,
		DisplayName: body.DisplayName,
		PublicKey:   body.PublicKey,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.fail(w, err)
		return
	}
	sess, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info().Str("user", user.ID.String()).Msg("user registered")
	writeJSON(w, map[string]any{"user": user, "token": sess.Token})
}

type loginBody struct {
	Phone string `json:"phone"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Phone) < 5 {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ctx := r.Context()

	user, ok, err := s.store.UserByPhone(ctx, body.Phone)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	sess, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, map[string]any{"user": user, "token": sess.Token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	user, ok, err := s.store.UserByID(r.Context(), userID)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}
	writeJSON(w, map[string]any{"user": user})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ domain.UserID) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, map[string]any{"users": users})
}

// handleUserKey serves the directory lookup a sender needs before its
// first message to a peer.
func (s *Server) handleUserKey(w http.ResponseWriter, r *http.Request, _ domain.UserID) {
	id := domain.UserID(mux.Vars(r)["id"])
	user, ok, err := s.store.UserByID(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, map[string]any{"publicKey": user.PublicKey})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	peer := domain.UserID(mux.Vars(r)["peerId"])
	msgs, err := s.store.ListMessages(r.Context(), userID, peer)
	if err != nil {
		s.fail(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.StoredMessage{}
	}
	writeJSON(w, map[string]any{"messages": msgs})
}

type postMessageBody struct {
	RecipientID string `json:"recipientId"`
	Ciphertext  string `json:"ciphertext"`
	Nonce       string `json:"nonce"`
}

// handlePostMessage stores one sealed envelope and pushes message:new
// to the recipient's live connections. The body is opaque to us.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request, userID domain.UserID) {
	var body postMessageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.RecipientID == "" || body.Ciphertext == "" || body.Nonce == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	msg := domain.StoredMessage{
		ID:          uuid.NewString(),
		SenderID:    userID,
		RecipientID: domain.UserID(body.RecipientID),
		Ciphertext:  body.Ciphertext,
		Nonce:       body.Nonce,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := s.store.StoreMessage(r.Context(), msg); err != nil {
		s.fail(w, err)
		return
	}
	if s.notifier != nil {
		s.notifier.Notify(msg.RecipientID, domain.ServerSignal{
			Type:    domain.SignalNewMessage,
			Message: &msg,
		})
	}
	writeJSON(w, map[string]any{"message": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
