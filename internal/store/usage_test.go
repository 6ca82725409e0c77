package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/model"
)

func TestApplyUsageDecrementsAndRecords(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Paracetamol", 25, 20, "tablets", "")

	rec := &model.UsageRecord{
		MedicationID: med.ID,
		QuantityUsed: 5,
		UserID:       "u1",
		UserName:     "thandi",
		Notes:        "ward 3",
	}
	snap, err := ApplyUsage(ctx, database, rec)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.CurrentStock)
	assert.Equal(t, 20, snap.MinimumThreshold)
	assert.Equal(t, "Paracetamol", snap.Name)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Paracetamol", rec.MedicationName)
	assert.False(t, rec.Timestamp.IsZero())

	stored, _ := GetMedication(ctx, database, med.ID)
	assert.Equal(t, 20, stored.CurrentStock)

	usage, err := ListUsage(ctx, database, 0)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, rec.ID, usage[0].ID)
	assert.Equal(t, 5, usage[0].QuantityUsed)
	assert.Equal(t, "thandi", usage[0].UserName)
	assert.Equal(t, "ward 3", usage[0].Notes)
}

func TestApplyUsageExactStockReachesZero(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Adrenaline", 3, 1, "ampoules", "")

	snap, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: med.ID, QuantityUsed: 3, UserID: "u", UserName: "u"})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStock)
}

func TestApplyUsageInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Paracetamol", 25, 20, "tablets", "")

	rec := &model.UsageRecord{MedicationID: med.ID, QuantityUsed: 30, UserID: "u1", UserName: "thandi"}
	_, err := ApplyUsage(ctx, database, rec)
	require.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Empty(t, rec.ID)

	stored, _ := GetMedication(ctx, database, med.ID)
	assert.Equal(t, 25, stored.CurrentStock)

	usage, _ := ListUsage(ctx, database, 0)
	assert.Empty(t, usage)
}

func TestApplyUsageNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: "missing", QuantityUsed: 1})
	assert.ErrorIs(t, err, model.ErrNotFound)

	med, _ := CreateMedication(ctx, database, "Gone", 10, 1, "tablets", "")
	DeleteMedication(ctx, database, med.ID)

	_, err = ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: med.ID, QuantityUsed: 1})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApplyUsageRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Paracetamol", 25, 20, "tablets", "")

	for _, q := range []int{0, -3} {
		_, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: med.ID, QuantityUsed: q})
		assert.Error(t, err, "quantity %d", q)
	}

	stored, _ := GetMedication(ctx, database, med.ID)
	assert.Equal(t, 25, stored.CurrentStock)
}

func TestApplyUsageConcurrentNeverNegative(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Paracetamol", 25, 20, "tablets", "")

	const workers = 12
	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: med.ID, QuantityUsed: 3, UserID: "u", UserName: "u"})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), succeeded.Load())
	assert.Equal(t, int32(4), insufficient.Load())

	stored, _ := GetMedication(ctx, database, med.ID)
	assert.Equal(t, 1, stored.CurrentStock)

	usage, _ := ListUsage(ctx, database, 0)
	assert.Len(t, usage, 8)
}

func TestApplyUsageRollsBackWhenRecordInsertFails(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE medications SET current_stock = current_stock - \?`).
		WithArgs(5, sqlmock.AnyArg(), "m1", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, name, current_stock`).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "current_stock", "minimum_threshold", "unit", "description", "image_mime",
			"created_at", "updated_at", "deleted_at",
		}).AddRow("m1", "Paracetamol", 20, 20, "tablets", nil, nil, now, now, nil))
	mock.ExpectExec(`INSERT INTO usage_records`).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	rec := &model.UsageRecord{MedicationID: "m1", QuantityUsed: 5, UserID: "u1", UserName: "thandi"}
	_, err = ApplyUsage(context.Background(), mockDB, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording usage")
	assert.Empty(t, rec.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsageLimitNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Paracetamol", 100, 10, "tablets", "")
	for i := 1; i <= 4; i++ {
		_, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: med.ID, QuantityUsed: i, UserID: "u", UserName: "u"})
		require.NoError(t, err)
	}

	usage, err := ListUsage(ctx, database, 2)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, 4, usage[0].QuantityUsed)
	assert.Equal(t, 3, usage[1].QuantityUsed)
}
