package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sotto/internal/domain"
)

// issueToken returns a fresh opaque bearer token. Tokens carry no
// structure; the session row is the only mapping back to a user.
func issueToken() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// createSession stores a new session for the user and returns it.
func (s *Server) createSession(ctx context.Context, userID domain.UserID) (domain.Session, error) {
	token, err := issueToken()
	if err != nil {
		return domain.Session{}, err
	}
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Authenticate resolves a bearer token to a user id. It also backs the
// signaling relay's websocket auth.
func (s *Server) Authenticate(ctx context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	sess, ok, err := s.store.SessionByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrUnauthorized
	}
	if _, ok, err := s.store.UserByID(ctx, sess.UserID); err != nil || !ok {
		return "", domain.ErrUnauthorized
	}
	return sess.UserID, nil
}

// requireAuth wraps a handler with bearer-token authentication. The
// crypto core never sees unauthenticated traffic; it is rejected here.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, domain.UserID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		userID, err := s.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, userID)
	}
}
