// Package history keeps a per-process transaction log: one row per transport
// round trip, including every redirect hop. The store lives in an in-memory
// SQLite database and disappears with the process; it is a trace aid, not a
// cache.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minoru-f/yomu/internal/client"
	"github.com/minoru-f/yomu/internal/logging"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	url          TEXT NOT NULL,
	status       INTEGER NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	body_bytes   INTEGER NOT NULL DEFAULT 0,
	duration_us  INTEGER NOT NULL DEFAULT 0,
	fetched_at   TEXT NOT NULL
);
`

// Entry is one recorded round trip.
type Entry struct {
	ID          string
	URL         string
	StatusCode  int
	ContentType string
	BodyBytes   int
	Duration    time.Duration
	FetchedAt   time.Time
}

// Store records and lists transaction entries. It implements client.Recorder.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open creates a fresh in-memory store. Each store gets its own named
// shared-cache database so the pool's connections see the same tables while
// separate stores stay isolated.
func Open(logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	dsn := fmt.Sprintf("file:history-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// Keep one connection alive so the in-memory database survives idle pool
	// churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "history"}),
	}, nil
}

// Record stores one hop. The entry ID is assigned here.
func (s *Store) Record(ctx context.Context, hop client.Hop) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, url, status, content_type, body_bytes, duration_us, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, hop.URL, hop.StatusCode, hop.ContentType, hop.BodyBytes,
		hop.Duration.Microseconds(), hop.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.Debug("recorded transaction",
		logging.Field{Key: "id", Value: id},
		logging.Field{Key: "url", Value: hop.URL},
		logging.Field{Key: "status", Value: hop.StatusCode})
	return nil
}

// List returns all recorded entries in record order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, status, content_type, body_bytes, duration_us, fetched_at
		 FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			durationU int64
			fetchedAt string
		)
		if err := rows.Scan(&e.ID, &e.URL, &e.StatusCode, &e.ContentType, &e.BodyBytes, &durationU, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		e.Duration = time.Duration(durationU) * time.Microsecond
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			e.FetchedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
