package domain

import "context"

// UserStore persists user profiles and answers directory lookups.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	UserByID(ctx context.Context, id UserID) (User, bool, error)
	UserByPhone(ctx context.Context, phone string) (User, bool, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// SessionStore persists bearer sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	SessionByToken(ctx context.Context, token string) (Session, bool, error)
}

// MessageStore persists sealed message records.
type MessageStore interface {
	StoreMessage(ctx context.Context, m StoredMessage) error
	// ListMessages returns both directions of the (a, b) pair ordered by
	// creation time, ascending.
	ListMessages(ctx context.Context, a, b UserID) ([]StoredMessage, error)
}

// RecordStore is the full server-side store.
type RecordStore interface {
	UserStore
	SessionStore
	MessageStore
	Close() error
}

// Notifier pushes a server signal to every connection currently bound
// to the given user. Delivery is at-most-once per connected endpoint;
// an offline user means the signal is dropped.
type Notifier interface {
	Notify(to UserID, sig ServerSignal)
}

// Directory resolves peer public keys on demand. Callers cache the
// result only as long as the derived shared key.
type Directory interface {
	PublicKey(ctx context.Context, id UserID) (PublicKey, error)
}
