package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cohortboard/internal/adapters/storage/csvcache"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

// --- shared fixtures ---

var reportToday = day.Day{Year: 2026, Month: 1, Dom: 9} // Friday

func pinnedClock() day.Clock {
	d := reportToday
	return day.Clock{Override: &d}
}

var refreshNow = time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)

func refreshNowFn() time.Time { return refreshNow }

const testRosterCSV = "姓名,報名日期,狀態\nAlice,,\nBob,,\n"

func respLine(name, email, date, status, highlight, method string) string {
	return strings.Join([]string{"2026/1/9 上午 8:00:00", email, name, date, status, highlight, method, "", ""}, ",")
}

func testResponsesCSV(lines ...string) string {
	all := append([]string{"時間戳記,電子郵件,姓名,打卡日期,是否完成,亮點,萃取法,文章,留言"}, lines...)
	return strings.Join(all, "\n")
}

func formatSlash(year, month, dom int) string {
	return fmt.Sprintf("%d/%d/%d", year, month, dom)
}

// mockFetcher serves canned bodies per URL and counts calls.
type mockFetcher struct {
	bodies map[string]string
	err    error
	calls  int
}

func (m *mockFetcher) FetchCSV(_ context.Context, url string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	body, ok := m.bodies[url]
	if !ok {
		return "", errors.New("unknown url")
	}
	return body, nil
}

// memCache implements csvcache.Store in memory.
type memCache struct {
	entries map[string]csvcache.Entry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]csvcache.Entry)}
}

func (c *memCache) Get(_ context.Context, feed string) (csvcache.Entry, bool, error) {
	entry, ok := c.entries[feed]
	return entry, ok, nil
}

func (c *memCache) Put(_ context.Context, entry csvcache.Entry) error {
	c.entries[entry.Feed] = entry
	return nil
}

func (c *memCache) Delete(_ context.Context, feed string) error {
	delete(c.entries, feed)
	return nil
}

func refreshDeps(fetcher *mockFetcher, cache *memCache, holder *snapshot.Holder) RefreshDatasetDeps {
	return RefreshDatasetDeps{
		Fetcher:       fetcher,
		Cache:         cache,
		Holder:        holder,
		Clock:         pinnedClock(),
		StatsURL:      "https://feeds.test/stats",
		HighlightsURL: "https://feeds.test/highlights",
		CacheTTL:      csvcache.DefaultTTL,
		Now:           refreshNowFn,
	}
}

func TestExecuteRefreshDataset_FetchesAndCaches(t *testing.T) {
	fetcher := &mockFetcher{bodies: map[string]string{
		"https://feeds.test/stats":      testRosterCSV,
		"https://feeds.test/highlights": testResponsesCSV(respLine("Alice", "alice@example.com", "2026/1/9", "✅ 是，已完成", "", "")),
	}}
	cache := newMemCache()
	holder := &snapshot.Holder{}

	result, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{}, refreshDeps(fetcher, cache, holder))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Students != 2 {
		t.Errorf("Students = %d, want 2", result.Students)
	}
	if result.Records != 1 {
		t.Errorf("Records = %d, want 1", result.Records)
	}
	if result.FromCache {
		t.Error("FromCache = true, want false on first fetch")
	}
	if holder.Get() == nil {
		t.Fatal("holder not populated")
	}
	if _, ok := cache.entries[csvcache.FeedStats]; !ok {
		t.Error("stats feed not cached")
	}
	if _, ok := cache.entries[csvcache.FeedHighlights]; !ok {
		t.Error("highlights feed not cached")
	}
}

func TestExecuteRefreshDataset_ServesFreshCache(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("endpoint down")}
	cache := newMemCache()
	cache.entries[csvcache.FeedStats] = csvcache.Entry{Feed: csvcache.FeedStats, Body: testRosterCSV, FetchedAt: refreshNow.Add(-time.Minute)}
	cache.entries[csvcache.FeedHighlights] = csvcache.Entry{Feed: csvcache.FeedHighlights, Body: testResponsesCSV(), FetchedAt: refreshNow.Add(-time.Minute)}
	holder := &snapshot.Holder{}

	result, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{}, refreshDeps(fetcher, cache, holder))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.FromCache {
		t.Error("FromCache = false, want true")
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

func TestExecuteRefreshDataset_ForceBypassesCache(t *testing.T) {
	fetcher := &mockFetcher{bodies: map[string]string{
		"https://feeds.test/stats":      testRosterCSV,
		"https://feeds.test/highlights": testResponsesCSV(),
	}}
	cache := newMemCache()
	cache.entries[csvcache.FeedStats] = csvcache.Entry{Feed: csvcache.FeedStats, Body: "stale", FetchedAt: refreshNow.Add(-time.Minute)}
	cache.entries[csvcache.FeedHighlights] = csvcache.Entry{Feed: csvcache.FeedHighlights, Body: "stale", FetchedAt: refreshNow.Add(-time.Minute)}
	holder := &snapshot.Holder{}

	result, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{Force: true}, refreshDeps(fetcher, cache, holder))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FromCache {
		t.Error("FromCache = true, want false on forced refresh")
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestExecuteRefreshDataset_StaleFallback(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("endpoint down")}
	cache := newMemCache()
	stale := refreshNow.Add(-time.Hour)
	cache.entries[csvcache.FeedStats] = csvcache.Entry{Feed: csvcache.FeedStats, Body: testRosterCSV, FetchedAt: stale}
	cache.entries[csvcache.FeedHighlights] = csvcache.Entry{Feed: csvcache.FeedHighlights, Body: testResponsesCSV(), FetchedAt: stale}
	holder := &snapshot.Holder{}

	result, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{}, refreshDeps(fetcher, cache, holder))
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if result.Students != 2 {
		t.Errorf("Students = %d, want 2 from stale body", result.Students)
	}
}

func TestExecuteRefreshDataset_ErrorKeepsSnapshot(t *testing.T) {
	prior := snapshot.Load(testRosterCSV, testResponsesCSV(), pinnedClock())
	holder := &snapshot.Holder{}
	holder.Set(prior)

	fetcher := &mockFetcher{err: errors.New("endpoint down")}
	_, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{}, refreshDeps(fetcher, newMemCache(), holder))
	if err == nil {
		t.Fatal("expected error when fetch fails with empty cache")
	}
	if holder.Get() != prior {
		t.Error("failed refresh replaced the prior snapshot")
	}
}

func TestExecuteRefreshDataset_RequiresURLs(t *testing.T) {
	deps := refreshDeps(&mockFetcher{}, newMemCache(), &snapshot.Holder{})
	deps.StatsURL = ""
	if _, err := ExecuteRefreshDataset(context.Background(), RefreshDatasetInput{}, deps); err == nil {
		t.Fatal("expected error for missing feed URL")
	}
}
