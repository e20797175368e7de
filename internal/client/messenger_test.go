package client_test

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sotto/internal/client"
	"sotto/internal/crypto"
	"sotto/internal/domain"
	"sotto/internal/server"
	"sotto/internal/store"
)

type user struct {
	keys domain.KeyPair
	api  *client.API
	msgr *client.Messenger
	id   domain.UserID
}

func newUser(t *testing.T, base, phone, name string) user {
	t.Helper()
	ctx := context.Background()

	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	api := client.NewAPI(base)
	res, err := api.Register(ctx, phone, name, kp.Public)
	require.NoError(t, err)
	api.Token = res.Token

	return user{
		keys: kp,
		api:  api,
		msgr: client.NewMessenger(api, res.User.ID, kp),
		id:   res.User.ID,
	}
}

func startServer(t *testing.T) (string, domain.RecordStore) {
	t.Helper()
	st := store.NewMemory()
	ts := httptest.NewServer(server.New(st, nil, zerolog.Nop()).Routes())
	t.Cleanup(ts.Close)
	return ts.URL, st
}

func TestMessenger_SendAndHistory(t *testing.T) {
	base, st := startServer(t)
	ctx := context.Background()

	alice := newUser(t, base, "+15550200", "Alice")
	bob := newUser(t, base, "+15550201", "Bob")

	_, err := alice.msgr.Send(ctx, bob.id, "hello bob")
	require.NoError(t, err)
	_, err = bob.msgr.Send(ctx, alice.id, "hi alice")
	require.NoError(t, err)

	// Each side decrypts the full conversation with its own key pair.
	for _, u := range []user{alice, bob} {
		peer := bob.id
		if u.id == bob.id {
			peer = alice.id
		}
		hist, err := u.msgr.History(ctx, peer)
		require.NoError(t, err)
		require.Len(t, hist, 2)
		require.True(t, hist[0].Decrypted)
		require.True(t, hist[1].Decrypted)
		require.Equal(t, "hello bob", hist[0].Text)
		require.Equal(t, "hi alice", hist[1].Text)
	}

	// The stored records contain nothing recoverable without the keys.
	raw, err := st.ListMessages(ctx, alice.id, bob.id)
	require.NoError(t, err)
	for _, m := range raw {
		require.NotContains(t, m.Ciphertext, "hello")
		require.NotContains(t, m.Ciphertext, "alice")
	}
}

func TestMessenger_TamperedEnvelopeRendersPlaceholder(t *testing.T) {
	base, st := startServer(t)
	ctx := context.Background()

	alice := newUser(t, base, "+15550202", "Alice")
	bob := newUser(t, base, "+15550203", "Bob")

	_, err := alice.msgr.Send(ctx, bob.id, "legit")
	require.NoError(t, err)

	// Corrupt the stored ciphertext in place, as a tampering server
	// could.
	raw, err := st.ListMessages(ctx, alice.id, bob.id)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	ct, err := base64.StdEncoding.DecodeString(raw[0].Ciphertext)
	require.NoError(t, err)
	ct[0] ^= 0xFF
	tampered := raw[0]
	tampered.ID = "tampered"
	tampered.Ciphertext = base64.StdEncoding.EncodeToString(ct)
	require.NoError(t, st.StoreMessage(ctx, tampered))

	hist, err := bob.msgr.History(ctx, alice.id)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	require.True(t, hist[0].Decrypted)
	require.Equal(t, "legit", hist[0].Text)
	require.False(t, hist[1].Decrypted)
	require.Equal(t, client.DecryptionPlaceholder, hist[1].Text)
}

func TestAPI_UnauthorizedSurfaced(t *testing.T) {
	base, _ := startServer(t)
	api := client.NewAPI(base)
	api.Token = "bogus"

	_, err := api.Users(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
