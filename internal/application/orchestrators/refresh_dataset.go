package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cohortboard/internal/adapters/storage/csvcache"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

// CSVFetcher downloads one published feed URL.
type CSVFetcher interface {
	FetchCSV(ctx context.Context, url string) (string, error)
}

// RefreshDatasetInput carries input for a dataset refresh.
type RefreshDatasetInput struct {
	Force bool // bypass the cache TTL and hit the feed endpoints
}

// RefreshDatasetDeps holds dependencies for RefreshDataset.
type RefreshDatasetDeps struct {
	Fetcher       CSVFetcher
	Cache         csvcache.Store
	Holder        *snapshot.Holder
	Clock         day.Clock
	StatsURL      string
	HighlightsURL string
	CacheTTL      time.Duration
	Now           func() time.Time
}

// RefreshDatasetResult reports what the refresh produced.
type RefreshDatasetResult struct {
	Students  int
	Records   int
	FromCache bool // both feeds served from a fresh cache entry
}

// ExecuteRefreshDataset loads both feeds, parses them into a new snapshot,
// and publishes it atomically. A failed refresh never disturbs the snapshot
// readers already hold.
// PRE: StatsURL and HighlightsURL are non-empty
// POST: On success the holder carries the new snapshot; on error it is untouched
func ExecuteRefreshDataset(ctx context.Context, input RefreshDatasetInput, deps RefreshDatasetDeps) (RefreshDatasetResult, error) {
	if deps.StatsURL == "" || deps.HighlightsURL == "" {
		return RefreshDatasetResult{}, errors.New("feed URLs are required")
	}

	statsBody, statsCached, err := loadFeed(ctx, deps, csvcache.FeedStats, deps.StatsURL, input.Force)
	if err != nil {
		return RefreshDatasetResult{}, fmt.Errorf("stats feed: %w", err)
	}
	highlightsBody, highlightsCached, err := loadFeed(ctx, deps, csvcache.FeedHighlights, deps.HighlightsURL, input.Force)
	if err != nil {
		return RefreshDatasetResult{}, fmt.Errorf("highlights feed: %w", err)
	}

	ds := snapshot.Load(statsBody, highlightsBody, deps.Clock)
	deps.Holder.Set(ds)

	result := RefreshDatasetResult{
		Students:  len(ds.Roster),
		Records:   len(ds.Records),
		FromCache: statsCached && highlightsCached,
	}
	slog.Info("dataset_refreshed", "students", result.Students, "records", result.Records, "from_cache", result.FromCache)
	return result, nil
}

// loadFeed returns one feed body, preferring a fresh cache entry. When the
// endpoint fails and a stale entry exists, the stale body is served rather
// than failing the whole refresh.
func loadFeed(ctx context.Context, deps RefreshDatasetDeps, feed, url string, force bool) (string, bool, error) {
	entry, cached, err := deps.Cache.Get(ctx, feed)
	if err != nil {
		slog.Warn("csv_cache_read_failed", "feed", feed, "error", err.Error())
		cached = false
	}

	if cached && !force && deps.Now().Sub(entry.FetchedAt) < deps.CacheTTL {
		return entry.Body, true, nil
	}

	body, fetchErr := deps.Fetcher.FetchCSV(ctx, url)
	if fetchErr != nil {
		if cached {
			slog.Warn("csv_fetch_failed_serving_stale", "feed", feed, "error", fetchErr.Error())
			return entry.Body, true, nil
		}
		return "", false, fetchErr
	}

	if err := deps.Cache.Put(ctx, csvcache.Entry{Feed: feed, Body: body, FetchedAt: deps.Now()}); err != nil {
		slog.Warn("csv_cache_write_failed", "feed", feed, "error", err.Error())
	}
	return body, false, nil
}
