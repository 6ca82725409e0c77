package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/cmas/internal/alerting"
	"github.com/erazemk/cmas/internal/model"
	"github.com/erazemk/cmas/internal/store"
)

const recentAlertsLimit = 20

// AlertsHandler serves the alert log and the SMS test endpoint.
type AlertsHandler struct {
	DB          *sql.DB
	Sender      alerting.Sender
	CountryCode string
	Logger      *slog.Logger
}

type testAlertResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// List handles GET /api/alerts.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := store.ListAlerts(r.Context(), h.DB, recentAlertsLimit)
	if err != nil {
		domainError(w, h.Logger, err, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []model.AlertRecord{}
	}
	jsonResponse(w, http.StatusOK, alerts)
}

// Test handles POST /api/alerts/test by sending a test SMS to the caller.
func (h *AlertsHandler) Test(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		domainError(w, h.Logger, err, "failed to load user")
		return
	}
	if user == nil || user.Phone == "" {
		jsonError(w, http.StatusBadRequest, "no phone number on file")
		return
	}

	phone := alerting.NormalizePhone(user.Phone, h.CountryCode)
	delivery := h.Sender.Send(r.Context(), phone, "This is a test alert from the Clinic Medication Availability System.")
	if !delivery.OK() {
		h.Logger.Warn("test sms failed", "user", user.Username, "phone", phone, "reason", delivery.Reason())
		jsonResponse(w, http.StatusOK, testAlertResponse{Message: "Failed to send test SMS: " + delivery.Reason()})
		return
	}

	h.Logger.Info("test sms sent", "user", user.Username, "phone", phone)
	jsonResponse(w, http.StatusOK, testAlertResponse{Message: "Test SMS sent to " + phone, Success: true})
}
