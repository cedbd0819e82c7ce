// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Message delivery lifecycle inside the journal.
const (
	StatusPending   = "pending"   // accepted by the gateway, not yet upstream
	StatusSent      = "sent"      // accepted by the upstream API
	StatusDelivered = "delivered" // delivery confirmed by result polling
	StatusFailed    = "failed"    // rejected upstream or delivery failed
)

// ErrNotFound is returned for lookups of unknown message keys.
var ErrNotFound = errors.New("store: message not found")

// Record is one journaled message.
type Record struct {
	Key        string
	Type       string
	Sender     string
	Receivers  []string
	Title      string
	Body       string
	Scheduled  string
	Status     string
	ResultCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	key         TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	sender      TEXT NOT NULL,
	receivers   TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	scheduled   TEXT NOT NULL DEFAULT '0',
	status      TEXT NOT NULL DEFAULT 'pending',
	result_code TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status, updated_at);
`

// Store is the sqlite-backed message journal.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the journal at dbPath.
func Open(dbPath string, cfg Config) (*Store, error) {
	db, err := open(dbPath, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies connectivity, used by the readiness checker.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert journals a freshly accepted message with StatusPending.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (key, type, sender, receivers, title, body, scheduled, status, result_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		rec.Key, rec.Type, rec.Sender, strings.Join(rec.Receivers, ","),
		rec.Title, rec.Body, rec.Scheduled, StatusPending, now, now)
	if err != nil {
		return fmt.Errorf("store: insert %s: %w", rec.Key, err)
	}
	return nil
}

// SetStatus transitions a message and records the upstream result code.
func (s *Store) SetStatus(ctx context.Context, key, status, resultCode string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET status = ?, result_code = ?, updated_at = ? WHERE key = ?`,
		status, resultCode, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("store: update %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the journal record for key.
func (s *Store) Get(ctx context.Context, key string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, type, sender, receivers, title, body, scheduled, status, result_code, created_at, updated_at
		FROM messages WHERE key = ?`, key)
	return scanRecord(row)
}

// ListByStatus returns up to limit messages in the given status whose last
// transition is older than cutoff, oldest first. The result poller uses it
// to pick up sent messages awaiting a delivery result.
func (s *Store) ListByStatus(ctx context.Context, status string, cutoff time.Time, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, type, sender, receivers, title, body, scheduled, status, result_code, created_at, updated_at
		FROM messages WHERE status = ? AND updated_at < ?
		ORDER BY updated_at ASC LIMIT ?`,
		status, cutoff.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", status, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of messages in the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE status = ?`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count %s: %w", status, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var receivers string
	err := row.Scan(&rec.Key, &rec.Type, &rec.Sender, &receivers, &rec.Title,
		&rec.Body, &rec.Scheduled, &rec.Status, &rec.ResultCode,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: scan: %w", err)
	}
	if receivers != "" {
		rec.Receivers = strings.Split(receivers, ",")
	}
	return rec, nil
}
