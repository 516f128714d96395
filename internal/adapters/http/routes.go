package web

import (
	"net/http"

	"cohortboard/internal/adapters/http/middleware"
)

// registerRoutes attaches the API surface to the mux. Public routes serve
// the dashboard, admin routes sit behind the coach session guard.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/banner", handleGetBanner)
	mux.HandleFunc("GET /api/heatmap", handleGetHeatmap)
	mux.HandleFunc("GET /api/today", handleGetToday)
	mux.HandleFunc("GET /api/leaderboard", handleGetLeaderboard)
	mux.HandleFunc("GET /api/calendar", handleGetCalendar)
	mux.HandleFunc("GET /api/highlights", handleGetHighlights)
	mux.HandleFunc("POST /api/refresh", handleRefresh)

	mux.HandleFunc("POST /api/admin/login", handleAdminLogin)
	mux.HandleFunc("POST /api/admin/logout", handleAdminLogout)

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(adminSessions)(h)
	}
	mux.Handle("GET /api/admin/weekly/preview", admin(handleWeeklyPreview))
	mux.Handle("POST /api/admin/reports/send", admin(handleSendReports))
	mux.Handle("POST /api/admin/streaks/update", admin(handleUpdateStreaks))
	mux.Handle("GET /api/admin/reports", admin(handleListReports))
	mux.Handle("GET /api/admin/perf", admin(handlePerfSnapshot))
}
