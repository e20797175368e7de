package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"sotto/internal/domain"
)

const schema = `
create table if not exists users (
	id          text primary key,
	phone       text not null unique,
	displayName text not null,
	publicKey   text not null,
	createdAt   integer not null
);
create table if not exists sessions (
	id        text primary key,
	userId    text not null,
	token     text not null unique,
	createdAt integer not null,
	foreign key(userId) references users(id)
);
create table if not exists messages (
	id          text primary key,
	senderId    text not null,
	recipientId text not null,
	ciphertext  text not null,
	nonce       text not null,
	createdAt   integer not null,
	foreign key(senderId) references users(id),
	foreign key(recipientId) references users(id)
);
create index if not exists idx_messages_pair on messages(senderId, recipientId, createdAt);
`

// SQLite implements domain.RecordStore on a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initialises) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) CreateUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users (id, phone, displayName, publicKey, createdAt) values (?, ?, ?, ?, ?)`,
		u.ID, u.Phone, u.DisplayName, u.PublicKey, u.CreatedAt)
	return err
}

func (s *SQLite) UserByID(ctx context.Context, id domain.UserID) (domain.User, bool, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select id, phone, displayName, publicKey, createdAt from users where id = ?`, id))
}

func (s *SQLite) UserByPhone(ctx context.Context, phone string) (domain.User, bool, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`select id, phone, displayName, publicKey, createdAt from users where phone = ?`, phone))
}

func (s *SQLite) scanUser(row *sql.Row) (domain.User, bool, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Phone, &u.DisplayName, &u.PublicKey, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

func (s *SQLite) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, phone, displayName, publicKey, createdAt from users order by createdAt desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Phone, &u.DisplayName, &u.PublicKey, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateSession(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`insert into sessions (id, userId, token, createdAt) values (?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Token, sess.CreatedAt)
	return err
}

func (s *SQLite) SessionByToken(ctx context.Context, token string) (domain.Session, bool, error) {
	var sess domain.Session
	err := s.db.QueryRowContext(ctx,
		`select id, userId, token, createdAt from sessions where token = ?`, token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	return sess, true, nil
}

func (s *SQLite) StoreMessage(ctx context.Context, m domain.StoredMessage) error {
	_, err := s.db.ExecContext(ctx,
		`insert into messages (id, senderId, recipientId, ciphertext, nonce, createdAt) values (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.RecipientID, m.Ciphertext, m.Nonce, m.CreatedAt)
	return err
}

func (s *SQLite) ListMessages(ctx context.Context, a, b domain.UserID) ([]domain.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, senderId, recipientId, ciphertext, nonce, createdAt from messages
		 where (senderId = ? and recipientId = ?) or (senderId = ? and recipientId = ?)
		 order by createdAt asc`,
		a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredMessage
	for rows.Next() {
		var m domain.StoredMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Ciphertext, &m.Nonce, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ domain.RecordStore = (*SQLite)(nil)
