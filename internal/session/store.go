package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoUser is returned when no user identity has been stored locally.
var ErrNoUser = errors.New("no stored user id")

const (
	keyUserID   = "user_id"
	keyFCMToken = "fcm_token"
)

// Store persists the small amount of local client state: the logged-in user
// identifier (stored as a string-encoded integer, matching the backend's
// wire format) and this device's push token.
type Store struct {
	db *sqlx.DB
}

// Open initializes the session database and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sqlx.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS session (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`)
	return err
}

// UserID returns the stored local user identifier.
func (s *Store) UserID(ctx context.Context) (int, error) {
	raw, err := s.get(ctx, keyUserID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("stored user id %q is not numeric", raw)
	}
	return id, nil
}

// SetUserID stores the local user identifier.
func (s *Store) SetUserID(ctx context.Context, userID int) error {
	return s.set(ctx, keyUserID, strconv.Itoa(userID))
}

// FCMToken returns this device's push token, or "" when none is stored.
func (s *Store) FCMToken(ctx context.Context) (string, error) {
	token, err := s.get(ctx, keyFCMToken)
	if errors.Is(err, ErrNoUser) {
		return "", nil
	}
	return token, err
}

// SetFCMToken stores this device's push token.
func (s *Store) SetFCMToken(ctx context.Context, token string) error {
	return s.set(ctx, keyFCMToken, token)
}

// Clear wipes the stored session, e.g. on logout.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM session WHERE key=?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoUser
	}
	return value, err
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO session (key, value) VALUES (?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
