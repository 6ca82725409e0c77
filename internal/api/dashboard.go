package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/cmas/internal/store"
)

// DashboardHandler serves aggregate stock figures.
type DashboardHandler struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetDashboardStats(r.Context(), h.DB)
	if err != nil {
		domainError(w, h.Logger, err, "failed to load dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
