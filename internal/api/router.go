package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/auth"
	"github.com/erazemk/cmas/internal/ledger"
	"github.com/erazemk/cmas/internal/model"
)

// Config carries the router's dependencies.
type Config struct {
	DB          *sql.DB
	Issuer      *auth.Issuer
	Ledger      *ledger.Ledger
	Sender      alerting.Sender
	CountryCode string
	Logger      *slog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, Issuer: cfg.Issuer, Logger: logger}
	usersHandler := &UsersHandler{DB: cfg.DB, Logger: logger}
	medsHandler := &MedicationsHandler{DB: cfg.DB, Ledger: cfg.Ledger, Logger: logger}
	usageHandler := &UsageHandler{DB: cfg.DB, Logger: logger}
	alertsHandler := &AlertsHandler{DB: cfg.DB, Sender: cfg.Sender, CountryCode: cfg.CountryCode, Logger: logger}
	dashboardHandler := &DashboardHandler{DB: cfg.DB, Logger: logger}

	authMW := AuthMiddleware(cfg.Issuer, cfg.DB, logger)
	requireAdmin := RequireRole(model.RoleAdmin)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("GET /healthz", health(cfg.DB))
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Own account.
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	mux.Handle("GET /api/dashboard", authed(dashboardHandler.Get))

	// Medications: read and use (all roles), write (admin).
	mux.Handle("GET /api/medications", authed(medsHandler.List))
	mux.Handle("POST /api/medications", admin(medsHandler.Create))
	mux.Handle("GET /api/medications/{id}", authed(medsHandler.Get))
	mux.Handle("PUT /api/medications/{id}", admin(medsHandler.Update))
	mux.Handle("DELETE /api/medications/{id}", admin(medsHandler.Delete))
	mux.Handle("POST /api/medications/{id}/use", authed(medsHandler.Use))
	mux.Handle("POST /api/medications/{id}/restock", admin(medsHandler.Restock))
	mux.Handle("PUT /api/medications/{id}/image", admin(medsHandler.UploadImage))
	mux.Handle("GET /api/medications/{id}/image", authed(medsHandler.GetImage))

	mux.Handle("GET /api/usage", authed(usageHandler.List))
	mux.Handle("GET /api/usage/export", admin(usageHandler.Export))

	mux.Handle("GET /api/alerts", authed(alertsHandler.List))
	mux.Handle("POST /api/alerts/test", admin(alertsHandler.Test))

	var h http.Handler = mux
	h = middleware.Recoverer(h)
	h = LoggingMiddleware(logger)(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
