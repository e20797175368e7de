package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"sotto/internal/crypto"
	"sotto/internal/domain"
)

// API is the HTTP client for the sotto server.
type API struct {
	Base  string
	Token string
	HTTP  *http.Client
}

// NewAPI returns a client for the server at base, e.g.
// http://127.0.0.1:4000. Token may be set later, after register/login.
func NewAPI(base string) *API {
	return &API{Base: base, HTTP: http.DefaultClient}
}

// AuthResult is the server's answer to register and login.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account (or logs in, if the phone is already
// registered) and publishes the public key to the directory.
func (c *API) Register(ctx context.Context, phone, displayName string, pub domain.PublicKey) (AuthResult, error) {
	var out AuthResult
	err := c.post(ctx, "/api/register", map[string]string{
		"phone":       phone,
		"displayName": displayName,
		"publicKey":   crypto.B64(pub.Slice()),
	}, &out)
	return out, err
}

// Login re-authenticates an existing account by phone.
func (c *API) Login(ctx context.Context, phone string) (AuthResult, error) {
	var out AuthResult
	err := c.post(ctx, "/api/login", map[string]string{"phone": phone}, &out)
	return out, err
}

// Me returns the profile behind the current token.
func (c *API) Me(ctx context.Context) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := c.getJSON(ctx, "/api/me", &out)
	return out.User, err
}

// Users lists the directory.
func (c *API) Users(ctx context.Context) ([]domain.User, error) {
	var out struct {
		Users []domain.User `json:"users"`
	}
	err := c.getJSON(ctx, "/api/users", &out)
	return out.Users, err
}

// PublicKey fetches a peer's Curve25519 public key from the directory.
func (c *API) PublicKey(ctx context.Context, id domain.UserID) (domain.PublicKey, error) {
	var out struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.getJSON(ctx, "/api/users/"+url.PathEscape(id.String())+"/key", &out); err != nil {
		return domain.PublicKey{}, err
	}
	return crypto.ParsePublicKey(out.PublicKey)
}

// Messages lists both directions of the conversation with peer,
// ascending by creation time. Envelopes come back still sealed.
func (c *API) Messages(ctx context.Context, peer domain.UserID) ([]domain.StoredMessage, error) {
	var out struct {
		Messages []domain.StoredMessage `json:"messages"`
	}
	err := c.getJSON(ctx, "/api/messages/"+url.PathEscape(peer.String()), &out)
	return out.Messages, err
}

// SendMessage posts one sealed envelope for the recipient.
func (c *API) SendMessage(ctx context.Context, recipient domain.UserID, mb domain.MessageBox) (domain.StoredMessage, error) {
	var out struct {
		Message domain.StoredMessage `json:"message"`
	}
	err := c.post(ctx, "/api/messages", map[string]string{
		"recipientId": recipient.String(),
		"ciphertext":  mb.Ciphertext,
		"nonce":       mb.Nonce,
	}, &out)
	return out.Message, err
}

func (c *API) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *API) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *API) do(req *http.Request, path string, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, path)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("server %s %s: %s", req.Method, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.Directory = (*API)(nil)
