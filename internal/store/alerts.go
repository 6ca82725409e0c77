package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/cmas/internal/model"
)

// CreateAlert persists an alert record. ID, type and timestamp are filled in
// when empty.
func CreateAlert(ctx context.Context, db *sql.DB, a *model.AlertRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AlertType == "" {
		a.AlertType = model.AlertTypeLowStock
	}
	if a.SentAt.IsZero() {
		a.SentAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO alert_records (id, medication_id, medication_name, current_stock, minimum_threshold,
		                            alert_type, message, recipient_id, sent_to_phone, status, error, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.MedicationID, a.MedicationName, a.CurrentStock, a.MinimumThreshold,
		a.AlertType, a.Message, a.RecipientID, a.SentToPhone, a.Status, a.Error, a.SentAt,
	)
	if err != nil {
		return fmt.Errorf("creating alert record: %w", err)
	}
	return nil
}

// ListAlerts returns the most recent alert records, newest first.
// A limit of zero or less returns every record.
func ListAlerts(ctx context.Context, db *sql.DB, limit int) ([]model.AlertRecord, error) {
	query := `SELECT id, medication_id, medication_name, current_stock, minimum_threshold,
	                 alert_type, message, recipient_id, sent_to_phone, status, error, sent_at
	          FROM alert_records ORDER BY sent_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.AlertRecord
	for rows.Next() {
		var a model.AlertRecord
		var recipient, errText sql.NullString
		if err := rows.Scan(&a.ID, &a.MedicationID, &a.MedicationName, &a.CurrentStock, &a.MinimumThreshold,
			&a.AlertType, &a.Message, &recipient, &a.SentToPhone, &a.Status, &errText, &a.SentAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.RecipientID = recipient.String
		a.Error = errText.String
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
