package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Key names mirror the browser localStorage entries the backend's web
// client uses, so a session written here reads the same way.
const (
	keyToken     = "authToken"
	keyUserID    = "userId"
	keyUserEmail = "userEmail"
	keyUserName  = "userName"
)

// SQLiteStore keeps the session in a small local key/value table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Current(ctx context.Context) (core.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session_kv`)
	if err != nil {
		return core.Session{}, fmt.Errorf("read session: %w", err)
	}
	defer rows.Close()

	var sess core.Session
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return core.Session{}, fmt.Errorf("scan session row: %w", err)
		}
		switch key {
		case keyToken:
			sess.Token = value
		case keyUserID:
			sess.UserID = value
		case keyUserEmail:
			sess.UserEmail = value
		case keyUserName:
			sess.UserName = value
		}
	}
	if err := rows.Err(); err != nil {
		return core.Session{}, fmt.Errorf("iterate session rows: %w", err)
	}
	if !sess.Complete() {
		return core.Session{}, ErrNotAuthenticated
	}
	return sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess core.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyToken:     sess.Token,
		keyUserID:    sess.UserID,
		keyUserEmail: sess.UserEmail,
		keyUserName:  sess.UserName,
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value); err != nil {
			return fmt.Errorf("write session key %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	slog.InfoContext(ctx, "Session saved", "user_id", sess.UserID)
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	slog.InfoContext(ctx, "Session cleared")
	return nil
}
