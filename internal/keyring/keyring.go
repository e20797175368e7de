package keyring

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"sotto/internal/domain"
	"sotto/internal/util/memzero"
)

const (
	identityFile = "identity.enc"
	sessionFile  = "session.json"
)

// ErrNoIdentity is returned when no identity has been generated yet.
var ErrNoIdentity = errors.New("no identity in keyring; run init first")

// ErrNoSession is returned when the device has not registered or logged in.
var ErrNoSession = errors.New("no session; register or login first")

// StoredSession is the locally persisted server session: who we are on
// the server and the opaque bearer token that proves it.
type StoredSession struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Keyring stores the identity key pair and the current session under a
// single directory.
type Keyring struct {
	dir string
	mu  sync.Mutex
}

// New opens a keyring rooted at dir, creating it if needed.
func New(dir string) (*Keyring, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Keyring{dir: dir}, nil
}

// SaveIdentity encrypts the key pair under the passphrase and writes it
// to disk. The secret key exists nowhere else.
func (k *Keyring) SaveIdentity(passphrase string, kp domain.KeyPair) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	raw, err := json.Marshal(kp)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	b, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(k.dir, identityFile), b, 0o600)
}

// LoadIdentity decrypts and returns the stored key pair.
func (k *Keyring) LoadIdentity(passphrase string) (domain.KeyPair, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(k.dir, identityFile))
	if errors.Is(err, os.ErrNotExist) {
		return domain.KeyPair{}, ErrNoIdentity
	}
	if err != nil {
		return domain.KeyPair{}, err
	}
	raw, err := decrypt(passphrase, b)
	if err != nil {
		return domain.KeyPair{}, err
	}
	defer memzero.Zero(raw)
	var kp domain.KeyPair
	if err := json.Unmarshal(raw, &kp); err != nil {
		return domain.KeyPair{}, err
	}
	return kp, nil
}

// HasIdentity reports whether an identity file exists.
func (k *Keyring) HasIdentity() bool {
	_, err := os.Stat(filepath.Join(k.dir, identityFile))
	return err == nil
}

// SaveSession persists the server session for later CLI runs.
func (k *Keyring) SaveSession(s StoredSession) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(k.dir, sessionFile), b, 0o600)
}

// LoadSession returns the persisted server session.
func (k *Keyring) LoadSession() (StoredSession, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(k.dir, sessionFile))
	if errors.Is(err, os.ErrNotExist) {
		return StoredSession{}, ErrNoSession
	}
	if err != nil {
		return StoredSession{}, err
	}
	var s StoredSession
	if err := json.Unmarshal(b, &s); err != nil {
		return StoredSession{}, err
	}
	return s, nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
