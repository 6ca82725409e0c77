package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/cmas/internal/model"
)

const medicationColumns = `id, name, current_stock, minimum_threshold, unit, description, image_mime,
	created_at, updated_at, deleted_at`

// MedicationUpdate holds the metadata fields to change. Nil fields are left as is.
// Stock only moves through ApplyUsage and Restock.
type MedicationUpdate struct {
	Name             *string
	MinimumThreshold *int
	Unit             *string
	Description      *string
}

// CreateMedication creates a new medication with its opening stock.
func CreateMedication(ctx context.Context, db *sql.DB, name string, stock, threshold int, unit, description string) (*model.Medication, error) {
	if stock < 0 || threshold < 0 {
		return nil, fmt.Errorf("stock and threshold must not be negative")
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx,
		`INSERT INTO medications (id, name, current_stock, minimum_threshold, unit, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, stock, threshold, unit, description, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating medication: %w", err)
	}

	return GetMedication(ctx, db, id)
}

// GetMedication returns an active medication by ID, or nil if there is none.
func GetMedication(ctx context.Context, db *sql.DB, id string) (*model.Medication, error) {
	m, err := scanMedication(db.QueryRowContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting medication: %w", err)
	}
	return m, nil
}

// ListMedications returns all non-deleted medications ordered by name.
func ListMedications(ctx context.Context, db *sql.DB) ([]model.Medication, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE deleted_at IS NULL ORDER BY name COLLATE NOCASE`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	defer rows.Close()

	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

// UpdateMedication applies a partial metadata update.
func UpdateMedication(ctx context.Context, db *sql.DB, id string, upd MedicationUpdate) (*model.Medication, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.MinimumThreshold != nil {
		if *upd.MinimumThreshold < 0 {
			return nil, fmt.Errorf("threshold must not be negative")
		}
		sets = append(sets, "minimum_threshold = ?")
		args = append(args, *upd.MinimumThreshold)
	}
	if upd.Unit != nil {
		sets = append(sets, "unit = ?")
		args = append(args, *upd.Unit)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		`UPDATE medications SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating medication: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return getUpdatedMedication(ctx, db, id)
}

// DeleteMedication soft-deletes a medication. Its usage and alert history stays.
func DeleteMedication(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE medications SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting medication: %w", err)
	}
	return requireAffected(result)
}

// Restock adds quantity to a medication's current stock.
func Restock(ctx context.Context, db *sql.DB, id string, quantity int) (*model.Medication, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE medications SET current_stock = current_stock + ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		quantity, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("restocking medication: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return getUpdatedMedication(ctx, db, id)
}

// SetMedicationImage sets a medication's package photo.
func SetMedicationImage(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE medications SET image = ?, image_mime = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting medication image: %w", err)
	}
	return requireAffected(result)
}

// GetMedicationImage returns a medication's photo and MIME type.
func GetMedicationImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM medications WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting medication image: %w", err)
	}
	return image, mime.String, nil
}

func scanMedication(row rowScanner) (*model.Medication, error) {
	m := &model.Medication{}
	var description, imageMime sql.NullString
	err := row.Scan(&m.ID, &m.Name, &m.CurrentStock, &m.MinimumThreshold, &m.Unit,
		&description, &imageMime, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	m.ImageMime = imageMime.String
	return m, nil
}

// getUpdatedMedication reads a medication back after a write. A row deleted
// in between is reported as not found.
func getUpdatedMedication(ctx context.Context, db *sql.DB, id string) (*model.Medication, error) {
	med, err := GetMedication(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, model.ErrNotFound
	}
	return med, nil
}
