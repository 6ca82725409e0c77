package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/cmas/internal/model"
)

// ApplyUsage decrements a medication's stock by rec.QuantityUsed and records the
// usage in a single transaction. The decrement is a conditional update, so two
// concurrent calls can never both pass the sufficiency check on a stale value.
//
// On success rec is filled in (ID, MedicationName, Timestamp) and the
// post-mutation medication snapshot is returned. On failure nothing is written
// and rec is left untouched.
func ApplyUsage(ctx context.Context, db *sql.DB, rec *model.UsageRecord) (*model.Medication, error) {
	if rec.QuantityUsed <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE medications SET current_stock = current_stock - ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND current_stock >= ?`,
		rec.QuantityUsed, now, rec.MedicationID, rec.QuantityUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("decrementing stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	}

	if n == 0 {
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT current_stock FROM medications WHERE id = ? AND deleted_at IS NULL`,
			rec.MedicationID,
		).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("checking available stock: %w", err)
		}
		return nil, fmt.Errorf("%w: have %d, need %d", model.ErrInsufficientStock, available, rec.QuantityUsed)
	}

	med, err := scanMedication(tx.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE id = ?`, rec.MedicationID,
	))
	if err != nil {
		return nil, fmt.Errorf("reading updated medication: %w", err)
	}

	usage := *rec
	usage.ID = uuid.NewString()
	usage.MedicationName = med.Name
	usage.Timestamp = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage_records (id, medication_id, medication_name, quantity_used, user_id, user_name, timestamp, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		usage.ID, usage.MedicationID, usage.MedicationName, usage.QuantityUsed,
		usage.UserID, usage.UserName, usage.Timestamp, usage.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("recording usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing usage: %w", err)
	}

	*rec = usage
	return med, nil
}

// ListUsage returns the most recent usage records, newest first.
// A limit of zero or less returns every record.
func ListUsage(ctx context.Context, db *sql.DB, limit int) ([]model.UsageRecord, error) {
	query := `SELECT id, medication_id, medication_name, quantity_used, user_id, user_name, timestamp, notes
	          FROM usage_records ORDER BY timestamp DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing usage: %w", err)
	}
	defer rows.Close()

	var records []model.UsageRecord
	for rows.Next() {
		var u model.UsageRecord
		var notes sql.NullString
		if err := rows.Scan(&u.ID, &u.MedicationID, &u.MedicationName, &u.QuantityUsed,
			&u.UserID, &u.UserName, &u.Timestamp, &notes); err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		u.Notes = notes.String
		records = append(records, u)
	}
	return records, rows.Err()
}
