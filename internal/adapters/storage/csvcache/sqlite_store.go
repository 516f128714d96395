package csvcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cohortboard/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new cache store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a cached feed body.
// PRE: feed is non-empty
// POST: Returns the entry and true when present; false with no error when absent
func (s *SQLiteStore) Get(ctx context.Context, feed string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT feed, body, fetched_at FROM csv_cache WHERE feed = ?", feed)

	var entry Entry
	var fetchedAt string
	err := row.Scan(&entry.Feed, &entry.Body, &fetchedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	entry.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to parse fetched_at: %w", err)
	}
	return entry, true, nil
}

// Put upserts a feed body.
// PRE: entry.Feed is non-empty
// POST: Entry is persisted, replacing any prior body for the feed
func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO csv_cache (feed, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(feed) DO UPDATE SET body=excluded.body, fetched_at=excluded.fetched_at`,
		entry.Feed, entry.Body, entry.FetchedAt.Format(time.RFC3339Nano))
	return err
}

// Delete removes a cached feed.
func (s *SQLiteStore) Delete(ctx context.Context, feed string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM csv_cache WHERE feed = ?", feed)
	return err
}
