package csvcache

import (
	"context"
	"time"
)

// Entry is one cached feed body with its fetch time.
type Entry struct {
	Feed      string
	Body      string
	FetchedAt time.Time
}

// Store persists raw CSV bodies so a restart or a burst of refreshes does
// not hammer the export endpoint. The TTL policy lives with the caller;
// the store only records timestamps.
type Store interface {
	Get(ctx context.Context, feed string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, feed string) error
}

// Feed name constants, matching the two sheet exports.
const (
	FeedStats      = "stats"
	FeedHighlights = "highlights"
)

// DefaultTTL mirrors the original dashboard's five-minute cache window.
const DefaultTTL = 5 * time.Minute
