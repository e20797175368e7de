package app

import (
	"fmt"
	"net/http"

	"sotto/internal/client"
	"sotto/internal/domain"
	"sotto/internal/keyring"
)

// Wire bundles the stores and clients for the CLI.
type Wire struct {
	Config  Config
	Keyring *keyring.Keyring
	API     *client.API
	HTTP    *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	kr, err := keyring.New(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	api := client.NewAPI(cfg.ServerURL)
	api.HTTP = httpClient

	return &Wire{
		Config:  cfg,
		Keyring: kr,
		API:     api,
		HTTP:    httpClient,
	}, nil
}

// SessionState is an unlocked, logged-in user: the profile from the
// stored session, the decrypted identity key pair and a messenger bound
// to both.
type SessionState struct {
	User      domain.User
	Keys      domain.KeyPair
	Token     string
	Messenger *client.Messenger
}

// Authenticated loads the stored session, unlocks the identity with
// passphrase and attaches the token to the API client.
func (w *Wire) Authenticated(passphrase string) (*SessionState, error) {
	sess, err := w.Keyring.LoadSession()
	if err != nil {
		return nil, err
	}
	kp, err := w.Keyring.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	w.API.Token = sess.Token

	return &SessionState{
		User:      sess.User,
		Keys:      kp,
		Token:     sess.Token,
		Messenger: client.NewMessenger(w.API, sess.User.ID, kp),
	}, nil
}
