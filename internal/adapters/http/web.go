package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"cohortboard/internal/adapters/email"
	"cohortboard/internal/adapters/http/middleware"
	"cohortboard/internal/adapters/http/perf"
	"cohortboard/internal/adapters/storage/csvcache"
	statsStore "cohortboard/internal/adapters/storage/stats"
	"cohortboard/internal/application/orchestrators"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// Stores holds all storage dependencies.
type Stores struct {
	CSVCacheStore csvcache.Store
	StatsStore    statsStore.Store
}

// Config carries the cohort parameters the handlers need. Everything here
// is fixed for the lifetime of the process.
type Config struct {
	StatsURL      string
	HighlightsURL string
	CacheTTL      time.Duration
	Strategy      streak.Strategy
	WeekStartDay  time.Weekday
	ProgramStart  day.Day
	Clock         day.Clock
	FromAddress   string
	ReplyTo       string
	// AdminPasswordHash is the bcrypt hash of the coach password. Empty
	// disables the admin endpoints entirely.
	AdminPasswordHash string
	RefreshCooldown   time.Duration
}

// loadCSRFKey reads the CSRF secret from COHORT_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("COHORT_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("COHORT_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("COHORT_ENV") == "production" {
		log.Fatal("COHORT_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (admin sessions won't survive restart). Set COHORT_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global cohort configuration (set by NewMux)
var config Config

// Global dataset holder (set by NewMux)
var holder *snapshot.Holder

// Global CSV fetcher (set by NewMux)
var fetcher orchestrators.CSVFetcher

// Global admin session store instance
var adminSessions *middleware.AdminSessions

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, cfg Config, s *Stores, f orchestrators.CSVFetcher, h *snapshot.Holder, collector *perf.Collector) http.Handler {
	config = cfg
	stores = s
	fetcher = f
	holder = h
	perfCollector = collector
	adminSessions = middleware.NewAdminSessions()
	middleware.SecureCookies = os.Getenv("COHORT_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
