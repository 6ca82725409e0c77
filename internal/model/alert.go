package model

import "time"

// AlertRecord is an immutable audit entry for one notification attempt.
type AlertRecord struct {
	ID               string    `json:"id"`
	MedicationID     string    `json:"medication_id"`
	MedicationName   string    `json:"medication_name"`
	CurrentStock     int       `json:"current_stock"`
	MinimumThreshold int       `json:"minimum_threshold"`
	AlertType        string    `json:"alert_type"`
	Message          string    `json:"message"`
	RecipientID      string    `json:"recipient_id,omitempty"`
	SentToPhone      string    `json:"sent_to_phone"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	SentAt           time.Time `json:"sent_at"`
}

// Alert types.
const (
	AlertTypeLowStock = "low_stock"
)

// Alert delivery statuses.
const (
	AlertStatusSent   = "sent"
	AlertStatusFailed = "failed"
)
