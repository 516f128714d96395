package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "cohortboard/internal/adapters/email"
	"cohortboard/internal/adapters/fetch"
	web "cohortboard/internal/adapters/http"
	"cohortboard/internal/adapters/http/perf"
	"cohortboard/internal/adapters/storage"
	csvCacheStore "cohortboard/internal/adapters/storage/csvcache"
	statsStorePkg "cohortboard/internal/adapters/storage/stats"
	"cohortboard/internal/application/orchestrators"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("COHORT_DB_PATH", "cohortboard.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	stores := &web.Stores{
		CSVCacheStore: csvCacheStore.NewSQLiteStore(db),
		StatsStore:    statsStorePkg.NewSQLiteStore(db),
	}
	fetcher := fetch.NewClient(nil)
	holder := &snapshot.Holder{}

	// Configure email sender
	resendKey := os.Getenv("COHORT_RESEND_KEY")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, cfg.FromAddress))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender())
		if os.Getenv("COHORT_ENV") == "production" {
			log.Println("WARNING: COHORT_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set COHORT_RESEND_KEY for real delivery)")
		}
	}

	refreshDeps := orchestrators.RefreshDatasetDeps{
		Fetcher:       fetcher,
		Cache:         stores.CSVCacheStore,
		Holder:        holder,
		Clock:         cfg.Clock,
		StatsURL:      cfg.StatsURL,
		HighlightsURL: cfg.HighlightsURL,
		CacheTTL:      cfg.CacheTTL,
		Now:           time.Now,
	}

	// First load before serving; the dashboard answers 503 until a
	// snapshot exists, so a failure here is fatal only in production.
	if _, err := orchestrators.ExecuteRefreshDataset(context.Background(), orchestrators.RefreshDatasetInput{}, refreshDeps); err != nil {
		if os.Getenv("COHORT_ENV") == "production" {
			log.Fatalf("initial dataset load failed: %v", err)
		}
		log.Printf("WARNING: initial dataset load failed: %v", err)
	}

	streakDeps := orchestrators.UpdateStreaksDeps{
		Holder:     holder,
		StatsStore: stores.StatsStore,
		Strategy:   cfg.Strategy,
		Now:        time.Now,
	}

	// Background refresh keeps the snapshot current and the streak
	// write-back table in step with it.
	refreshInterval := envDuration("COHORT_REFRESH_INTERVAL", 5*time.Minute)
	refreshStopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := orchestrators.ExecuteRefreshDataset(context.Background(), orchestrators.RefreshDatasetInput{Force: true}, refreshDeps); err != nil {
					log.Printf("background refresh failed: %v", err)
					continue
				}
				if _, err := orchestrators.ExecuteUpdateStreaks(context.Background(), streakDeps); err != nil {
					log.Printf("streak write-back failed: %v", err)
				}
			case <-refreshStopCh:
				return
			}
		}
	}()
	defer close(refreshStopCh)

	// Create HTTP handler with middleware (pass collector for timing)
	mux := web.NewMux("static", cfg, stores, fetcher, holder, collector)

	// Start server
	addr := envOrDefault("COHORT_ADDR", ":8080")
	log.Printf("cohortboard %s starting on %s (env=%s)", version, addr, envOrDefault("COHORT_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig assembles the cohort configuration from COHORT_* env vars.
func loadConfig() (web.Config, error) {
	cfg := web.Config{
		StatsURL:          os.Getenv("COHORT_STATS_CSV_URL"),
		HighlightsURL:     os.Getenv("COHORT_CHECKIN_CSV_URL"),
		CacheTTL:          envDuration("COHORT_CACHE_TTL", csvCacheStore.DefaultTTL),
		FromAddress:       envOrDefault("COHORT_RESEND_FROM", "35天自學挑戰 <noreply@example.com>"),
		ReplyTo:           os.Getenv("COHORT_REPLY_TO"),
		AdminPasswordHash: os.Getenv("COHORT_ADMIN_PASSWORD_HASH"),
		RefreshCooldown:   envDuration("COHORT_REFRESH_COOLDOWN", time.Minute),
		Clock:             day.NewClock(),
	}

	strategy, err := streak.ParseStrategy(envOrDefault("COHORT_STREAK_STRATEGY", string(streak.StrategyMaxStreak)))
	if err != nil {
		return web.Config{}, err
	}
	cfg.Strategy = strategy

	cfg.WeekStartDay = time.Monday
	if envOrDefault("COHORT_WEEK_START", "monday") == "sunday" {
		cfg.WeekStartDay = time.Sunday
	}

	start, err := day.Normalize(envOrDefault("COHORT_PROGRAM_START", "2025-12-08"))
	if err != nil {
		return web.Config{}, err
	}
	cfg.ProgramStart = start

	// A pinned "today" supports rehearsing a past or future program day.
	if raw := os.Getenv("COHORT_TODAY_OVERRIDE"); raw != "" {
		pinned, err := day.Normalize(raw)
		if err != nil {
			return web.Config{}, err
		}
		cfg.Clock.Override = &pinned
		log.Printf("clock pinned to %s", pinned.Key())
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	log.Printf("WARNING: cannot parse %s=%q, using default %s", key, raw, fallback)
	return fallback
}
