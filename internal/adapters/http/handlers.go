package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cohortboard/internal/adapters/http/middleware"
	"cohortboard/internal/application/orchestrators"
	"cohortboard/internal/application/projections"
	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
	"cohortboard/internal/domain/streak"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// currentDataset returns the published snapshot, or replies 503 when no
// refresh has succeeded yet (startup before the first feed load).
func currentDataset(w http.ResponseWriter) (*snapshot.Dataset, bool) {
	ds := holder.Get()
	if ds == nil {
		http.Error(w, "dataset not loaded yet", http.StatusServiceUnavailable)
		return nil, false
	}
	return ds, true
}

// handleGetBanner reports today's check-in rate for the page header.
func handleGetBanner(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	result := projections.QueryGetDailyRate(ds, projections.GetDailyRateQuery{Day: ds.Clock.Today()})
	writeJSON(w, result)
}

// handleGetHeatmap returns the fixed 35-cell program heatmap.
func handleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	result := projections.QueryGetHeatmap(ds, projections.GetHeatmapQuery{StartDay: config.ProgramStart})
	writeJSON(w, result)
}

// handleGetToday splits the roster into checked-in and pending for today.
func handleGetToday(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	writeJSON(w, projections.QueryGetTodayStatus(ds))
}

// handleGetLeaderboard groups students into journey tiers. The configured
// streak strategy applies unless the request overrides it.
func handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	strategy := config.Strategy
	if raw := r.URL.Query().Get("strategy"); raw != "" {
		parsed, err := streak.ParseStrategy(raw)
		if err != nil {
			http.Error(w, "unknown strategy", http.StatusBadRequest)
			return
		}
		strategy = parsed
	}
	result := projections.QueryGetLeaderboard(ds, projections.GetLeaderboardQuery{Strategy: strategy})
	writeJSON(w, result)
}

// handleGetCalendar returns one student's personal 35-day calendar.
func handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	student := r.URL.Query().Get("student")
	if student == "" {
		http.Error(w, "student is required", http.StatusBadRequest)
		return
	}
	result := projections.QueryGetPersonalCalendar(ds, projections.GetPersonalCalendarQuery{
		StudentName: student,
		StartDay:    config.ProgramStart,
	})
	writeJSON(w, result)
}

// handleGetHighlights returns the highlight wall for one day (today when
// no date is given).
func handleGetHighlights(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	var target day.Day
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := day.Normalize(raw)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		target = parsed
	}
	result := projections.QueryGetHighlights(ds, projections.GetHighlightsQuery{Day: target})
	writeJSON(w, result)
}

// Manual refresh cooldown state. The button on the dashboard bypasses the
// cache TTL, so it needs its own brake.
var (
	refreshMu   sync.Mutex
	lastRefresh time.Time
)

// handleRefresh forces a feed reload, subject to a cooldown window.
func handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshMu.Lock()
	if config.RefreshCooldown > 0 && !lastRefresh.IsZero() {
		elapsed := timeNow().Sub(lastRefresh)
		if elapsed < config.RefreshCooldown {
			remaining := config.RefreshCooldown - elapsed
			refreshMu.Unlock()
			w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
			http.Error(w, "refresh cooldown active", http.StatusTooManyRequests)
			return
		}
	}
	lastRefresh = timeNow()
	refreshMu.Unlock()

	result, err := orchestrators.ExecuteRefreshDataset(r.Context(), orchestrators.RefreshDatasetInput{Force: true}, refreshDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

func refreshDeps() orchestrators.RefreshDatasetDeps {
	return orchestrators.RefreshDatasetDeps{
		Fetcher:       fetcher,
		Cache:         stores.CSVCacheStore,
		Holder:        holder,
		Clock:         config.Clock,
		StatsURL:      config.StatsURL,
		HighlightsURL: config.HighlightsURL,
		CacheTTL:      config.CacheTTL,
		Now:           timeNow,
	}
}

// handleAdminLogin exchanges the coach password for a session token.
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if config.AdminPasswordHash == "" {
		http.Error(w, "admin access is not configured", http.StatusServiceUnavailable)
		return
	}
	var input struct {
		Password string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPasswordHash), []byte(input.Password)); err != nil {
		slog.Warn("admin_login_rejected", "remote", r.RemoteAddr)
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}
	token, err := adminSessions.Create()
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetAdminCookie(w, token)
	slog.Info("admin_login", "remote", r.RemoteAddr)
	writeJSON(w, map[string]string{"token": token})
}

// handleAdminLogout drops the session named by the request credentials.
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.AdminToken(r); token != "" {
		adminSessions.Delete(token)
	}
	middleware.ClearAdminCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleWeeklyPreview returns the weekly report numbers without sending
// anything, so the coach can sanity-check before a send.
func handleWeeklyPreview(w http.ResponseWriter, r *http.Request) {
	ds, ok := currentDataset(w)
	if !ok {
		return
	}
	result := projections.QueryGetWeeklyStats(ds, projections.GetWeeklyStatsQuery{
		ReferenceDay: ds.Clock.Today(),
		WeekStart:    config.WeekStartDay,
		Strategy:     config.Strategy,
		ProgramStart: config.ProgramStart,
	})
	writeJSON(w, result)
}

// handleSendReports mails the weekly milestone report to the cohort, or to
// a single test recipient when one is given.
func handleSendReports(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TestRecipient string `json:"testRecipient"`
	}
	if err := strictDecode(r, &input); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := orchestrators.ExecuteSendWeeklyReports(r.Context(),
		orchestrators.SendWeeklyReportsInput{TestRecipient: input.TestRecipient},
		orchestrators.SendWeeklyReportsDeps{
			Holder:       holder,
			Sender:       emailSender,
			StatsStore:   stores.StatsStore,
			Strategy:     config.Strategy,
			WeekStartDay: config.WeekStartDay,
			ProgramStart: config.ProgramStart,
			FromAddress:  config.FromAddress,
			ReplyTo:      config.ReplyTo,
			GenerateID:   generateID,
			Now:          timeNow,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleUpdateStreaks recomputes and persists every student's streak row.
func handleUpdateStreaks(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteUpdateStreaks(r.Context(), orchestrators.UpdateStreaksDeps{
		Holder:     holder,
		StatsStore: stores.StatsStore,
		Strategy:   config.Strategy,
		Now:        timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleListReports returns the delivery log for one report week.
func handleListReports(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 1 {
		http.Error(w, "week must be a positive integer", http.StatusBadRequest)
		return
	}
	entries, err := stores.StatsStore.ListReportsByWeek(r.Context(), week)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]any{"week": week, "entries": entries})
}

// handlePerfSnapshot exposes request timing percentiles for the admin page.
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	window := 60 * time.Minute
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		window = time.Duration(minutes) * time.Minute
	}
	writeJSON(w, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
