package csvcache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cohortboard/internal/adapters/storage"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStore_GetAbsent(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get(context.Background(), FeedStats)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected absent entry, got present")
	}
}

func TestSQLiteStore_PutGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fetchedAt := time.Date(2026, 1, 9, 8, 30, 0, 0, time.UTC)
	if err := store.Put(ctx, Entry{Feed: FeedStats, Body: "name\nAlice", FetchedAt: fetchedAt}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok, err := store.Get(ctx, FeedStats)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected present entry")
	}
	if entry.Body != "name\nAlice" {
		t.Errorf("Body = %q, want %q", entry.Body, "name\nAlice")
	}
	if !entry.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", entry.FetchedAt, fetchedAt)
	}
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	second := first.Add(10 * time.Minute)

	if err := store.Put(ctx, Entry{Feed: FeedHighlights, Body: "old", FetchedAt: first}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := store.Put(ctx, Entry{Feed: FeedHighlights, Body: "new", FetchedAt: second}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	entry, ok, err := store.Get(ctx, FeedHighlights)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if entry.Body != "new" {
		t.Errorf("Body = %q, want %q", entry.Body, "new")
	}
	if !entry.FetchedAt.Equal(second) {
		t.Errorf("FetchedAt = %v, want %v", entry.FetchedAt, second)
	}
}

func TestSQLiteStore_FeedsAreIndependent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)

	if err := store.Put(ctx, Entry{Feed: FeedStats, Body: "roster", FetchedAt: at}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, Entry{Feed: FeedHighlights, Body: "responses", FetchedAt: at}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, ok, _ := store.Get(ctx, FeedStats)
	if !ok || entry.Body != "roster" {
		t.Errorf("stats feed = (%q, %v), want (%q, true)", entry.Body, ok, "roster")
	}
	entry, ok, _ = store.Get(ctx, FeedHighlights)
	if !ok || entry.Body != "responses" {
		t.Errorf("highlights feed = (%q, %v), want (%q, true)", entry.Body, ok, "responses")
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, Entry{Feed: FeedStats, Body: "x", FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, FeedStats); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, ok, err := store.Get(ctx, FeedStats)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("entry still present after Delete")
	}

	// Deleting an absent feed is not an error.
	if err := store.Delete(ctx, FeedStats); err != nil {
		t.Errorf("Delete of absent feed failed: %v", err)
	}
}
