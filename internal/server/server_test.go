package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sotto/internal/crypto"
	"sotto/internal/domain"
	"sotto/internal/protocol/seal"
	"sotto/internal/server"
	"sotto/internal/store"
)

type recordedSignal struct {
	To  domain.UserID
	Sig domain.ServerSignal
}

type fakeNotifier struct {
	signals []recordedSignal
}

func (f *fakeNotifier) Notify(to domain.UserID, sig domain.ServerSignal) {
	f.signals = append(f.signals, recordedSignal{To: to, Sig: sig})
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	srv := server.New(store.NewMemory(), n, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, n
}

func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode/100 == 2 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

type authResp struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func register(t *testing.T, url, phone, name, pubKey string) authResp {
	t.Helper()
	var out authResp
	resp := doJSON(t, http.MethodPost, url+"/api/register",
		"", map[string]string{"phone": phone, "displayName": name, "publicKey": pubKey}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	alice := register(t, ts.URL, "+15550100", "Alice", crypto.B64(kp.Public.Slice()))
	require.Equal(t, "Alice", alice.User.DisplayName)

	// Registering the same phone again behaves as login with a new token.
	again := register(t, ts.URL, "+15550100", "Alice", crypto.B64(kp.Public.Slice()))
	require.Equal(t, alice.User.ID, again.User.ID)
	require.NotEqual(t, alice.Token, again.Token)

	var out authResp
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/login", "", map[string]string{"phone": "+15550100"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, alice.User.ID, out.User.ID)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/login", "", map[string]string{"phone": "+15559999"}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthBoundary(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, token := range []string{"", "bogus"} {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/me", token, nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	kp, _ := crypto.GenerateKeyPair()
	alice := register(t, ts.URL, "+15550101", "Alice", crypto.B64(kp.Public.Slice()))

	var me struct {
		User domain.User `json:"user"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/me", alice.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, alice.User.ID, me.User.ID)
}

func TestDirectoryAndKeyLookup(t *testing.T) {
	ts, _ := newTestServer(t)
	kpA, _ := crypto.GenerateKeyPair()
	kpB, _ := crypto.GenerateKeyPair()
	alice := register(t, ts.URL, "+15550102", "Alice", crypto.B64(kpA.Public.Slice()))
	bob := register(t, ts.URL, "+15550103", "Bob", crypto.B64(kpB.Public.Slice()))

	var users struct {
		Users []domain.User `json:"users"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/users", alice.Token, nil, &users)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, users.Users, 2)

	var key struct {
		PublicKey string `json:"publicKey"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/users/"+bob.User.ID.String()+"/key", alice.Token, nil, &key)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, crypto.B64(kpB.Public.Slice()), key.PublicKey)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/users/nobody/key", alice.Token, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestEndToEndConfidentiality is the full flow: the server stores
// only an envelope it cannot open, and the recipient recovers the
// plaintext with its own key pair.
func TestEndToEndConfidentiality(t *testing.T) {
	ts, notifier := newTestServer(t)

	kpA, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	kpB, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	alice := register(t, ts.URL, "+15550104", "Alice", crypto.B64(kpA.Public.Slice()))
	bob := register(t, ts.URL, "+15550105", "Bob", crypto.B64(kpB.Public.Slice()))

	// Alice fetches Bob's key from the directory and seals "hello".
	var keyOut struct {
		PublicKey string `json:"publicKey"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/api/users/"+bob.User.ID.String()+"/key", alice.Token, nil, &keyOut)
	bobPub, err := crypto.ParsePublicKey(keyOut.PublicKey)
	require.NoError(t, err)

	kAB := crypto.SharedKey(kpA.Secret, bobPub)
	mb, err := seal.Seal(kAB, []byte("hello"))
	require.NoError(t, err)

	var posted struct {
		Message domain.StoredMessage `json:"message"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/messages", alice.Token, map[string]string{
		"recipientId": bob.User.ID.String(),
		"ciphertext":  mb.Ciphertext,
		"nonce":       mb.Nonce,
	}, &posted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, posted.Message.Ciphertext, "hello")

	// The recipient was notified with routing metadata only.
	require.Len(t, notifier.signals, 1)
	require.Equal(t, bob.User.ID, notifier.signals[0].To)
	require.Equal(t, domain.SignalNewMessage, notifier.signals[0].Sig.Type)

	// Bob lists the conversation and opens the envelope with his own
	// independently derived key.
	var listed struct {
		Messages []domain.StoredMessage `json:"messages"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/messages/"+alice.User.ID.String(), bob.Token, nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed.Messages, 1)

	var aliceKeyOut struct {
		PublicKey string `json:"publicKey"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/api/users/"+alice.User.ID.String()+"/key", bob.Token, nil, &aliceKeyOut)
	alicePub, err := crypto.ParsePublicKey(aliceKeyOut.PublicKey)
	require.NoError(t, err)

	kBA := crypto.SharedKey(kpB.Secret, alicePub)
	pt, err := seal.Open(kBA, listed.Messages[0].Ciphertext, listed.Messages[0].Nonce)
	require.NoError(t, err)
	require.Equal(t, "hello", string(pt))
}

func TestPostMessage_Validation(t *testing.T) {
	ts, _ := newTestServer(t)
	kp, _ := crypto.GenerateKeyPair()
	alice := register(t, ts.URL, "+15550106", "Alice", crypto.B64(kp.Public.Slice()))

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/messages", alice.Token,
		map[string]string{"recipientId": "", "ciphertext": "x", "nonce": "y"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthenticate_Direct(t *testing.T) {
	n := &fakeNotifier{}
	srv := server.New(store.NewMemory(), n, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	kp, _ := crypto.GenerateKeyPair()
	alice := register(t, ts.URL, "+15550107", "Alice", crypto.B64(kp.Public.Slice()))

	id, err := srv.Authenticate(context.Background(), alice.Token)
	require.NoError(t, err)
	require.Equal(t, alice.User.ID, id)

	_, err = srv.Authenticate(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
