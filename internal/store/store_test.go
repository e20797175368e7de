package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sotto/internal/domain"
	"sotto/internal/store"
)

// Both implementations must behave identically; run the same suite
// against each.
func stores(t *testing.T) map[string]domain.RecordStore {
	t.Helper()
	sq, err := store.OpenSQLite(filepath.Join(t.TempDir(), "sotto.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]domain.RecordStore{
		"sqlite": sq,
		"memory": store.NewMemory(),
	}
}

func TestUsers(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.UserByPhone(ctx, "+15550001")
			require.NoError(t, err)
			require.False(t, ok)

			alice := domain.User{ID: "u-alice", Phone: "+15550001", DisplayName: "Alice", PublicKey: "pkA", CreatedAt: 100}
			bob := domain.User{ID: "u-bob", Phone: "+15550002", DisplayName: "Bob", PublicKey: "pkB", CreatedAt: 200}
			require.NoError(t, s.CreateUser(ctx, alice))
			require.NoError(t, s.CreateUser(ctx, bob))

			got, ok, err := s.UserByID(ctx, "u-alice")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, alice, got)

			got, ok, err = s.UserByPhone(ctx, "+15550002")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, bob, got)

			// Directory lists newest first.
			users, err := s.ListUsers(ctx)
			require.NoError(t, err)
			require.Len(t, users, 2)
			require.Equal(t, domain.UserID("u-bob"), users[0].ID)
		})
	}
}

func TestSessions(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateUser(ctx, domain.User{ID: "u-1", Phone: "+15550003"}))

			sess := domain.Session{ID: "s-1", UserID: "u-1", Token: "tok-abc", CreatedAt: 1}
			require.NoError(t, s.CreateSession(ctx, sess))

			got, ok, err := s.SessionByToken(ctx, "tok-abc")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, domain.UserID("u-1"), got.UserID)

			_, ok, err = s.SessionByToken(ctx, "tok-unknown")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestMessages_PairOrderedAscending(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateUser(ctx, domain.User{ID: "a", Phone: "+15550004"}))
			require.NoError(t, s.CreateUser(ctx, domain.User{ID: "b", Phone: "+15550005"}))
			require.NoError(t, s.CreateUser(ctx, domain.User{ID: "c", Phone: "+15550006"}))

			put := func(id string, from, to domain.UserID, at int64) {
				require.NoError(t, s.StoreMessage(ctx, domain.StoredMessage{
					ID: id, SenderID: from, RecipientID: to,
					Ciphertext: "ct-" + id, Nonce: "n-" + id, CreatedAt: at,
				}))
			}
			put("m2", "b", "a", 20)
			put("m1", "a", "b", 10)
			put("m3", "a", "c", 15) // different pair, must not appear

			msgs, err := s.ListMessages(ctx, "a", "b")
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			require.Equal(t, "m1", msgs[0].ID)
			require.Equal(t, "m2", msgs[1].ID)

			// Symmetric: the pair (b, a) sees the same conversation.
			rev, err := s.ListMessages(ctx, "b", "a")
			require.NoError(t, err)
			require.Equal(t, msgs, rev)
		})
	}
}
