package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/cmas/internal/model"
	"github.com/erazemk/cmas/internal/report"
	"github.com/erazemk/cmas/internal/store"
)

const recentUsageLimit = 50

// UsageHandler serves the usage log.
type UsageHandler struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// List handles GET /api/usage.
func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListUsage(r.Context(), h.DB, recentUsageLimit)
	if err != nil {
		domainError(w, h.Logger, err, "failed to list usage")
		return
	}
	if records == nil {
		records = []model.UsageRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Export handles GET /api/usage/export with the full log as an XLSX file.
func (h *UsageHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := store.ListUsage(r.Context(), h.DB, 0)
	if err != nil {
		domainError(w, h.Logger, err, "failed to export usage")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteUsage(&buf, records); err != nil {
		domainError(w, h.Logger, err, "failed to export usage")
		return
	}

	filename := fmt.Sprintf("usage-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}
