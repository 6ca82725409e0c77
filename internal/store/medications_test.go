package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/model"
)

func TestCreateAndGetMedication(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, err := CreateMedication(ctx, database, "Amoxicillin 500mg", 120, 30, "capsules", "Broad-spectrum antibiotic")
	require.NoError(t, err)
	require.NotNil(t, med)
	assert.NotEmpty(t, med.ID)
	assert.Equal(t, 120, med.CurrentStock)
	assert.Equal(t, 30, med.MinimumThreshold)
	assert.Equal(t, "capsules", med.Unit)
	assert.False(t, med.CreatedAt.IsZero())

	got, err := GetMedication(ctx, database, med.ID)
	require.NoError(t, err)
	assert.Equal(t, med.Name, got.Name)
	assert.Equal(t, "Broad-spectrum antibiotic", got.Description)
}

func TestCreateMedicationRejectsNegative(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateMedication(context.Background(), database, "Bad", -1, 0, "tablets", "")
	assert.Error(t, err)
}

func TestListMedicationsSkipsDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateMedication(ctx, database, "paracetamol", 100, 20, "tablets", "")
	ibu, _ := CreateMedication(ctx, database, "Ibuprofen", 50, 10, "tablets", "")
	CreateMedication(ctx, database, "Amoxicillin", 40, 10, "capsules", "")

	require.NoError(t, DeleteMedication(ctx, database, ibu.ID))

	meds, err := ListMedications(ctx, database)
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Amoxicillin", meds[0].Name)
	assert.Equal(t, "paracetamol", meds[1].Name)

	got, err := GetMedication(ctx, database, ibu.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, DeleteMedication(ctx, database, ibu.ID), model.ErrNotFound)
}

func TestUpdateMedicationPartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Salbutamol", 12, 5, "inhalers", "")

	threshold := 8
	desc := "Reliever inhaler"
	updated, err := UpdateMedication(ctx, database, med.ID, MedicationUpdate{
		MinimumThreshold: &threshold,
		Description:      &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Salbutamol", updated.Name)
	assert.Equal(t, 8, updated.MinimumThreshold)
	assert.Equal(t, 12, updated.CurrentStock)
	assert.Equal(t, "Reliever inhaler", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(med.UpdatedAt))

	_, err = UpdateMedication(ctx, database, "missing", MedicationUpdate{Name: &desc})
	assert.ErrorIs(t, err, model.ErrNotFound)

	negative := -1
	_, err = UpdateMedication(ctx, database, med.ID, MedicationUpdate{MinimumThreshold: &negative})
	assert.Error(t, err)
}

func TestRestock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Metformin", 10, 20, "tablets", "")

	got, err := Restock(ctx, database, med.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 100, got.CurrentStock)

	_, err = Restock(ctx, database, med.ID, 0)
	assert.Error(t, err)

	_, err = Restock(ctx, database, "missing", 5)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRestockDeletedBeforeReadBack(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE medications SET current_stock = current_stock \+ \?`).
		WithArgs(5, sqlmock.AnyArg(), "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, name, current_stock`).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "current_stock", "minimum_threshold", "unit", "description", "image_mime",
			"created_at", "updated_at", "deleted_at",
		}))

	med, err := Restock(context.Background(), mockDB, "m1", 5)
	assert.Nil(t, med)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	med, _ := CreateMedication(ctx, database, "Insulin", 10, 2, "vials", "")

	data, mime, err := GetMedicationImage(ctx, database, med.ID)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, mime)

	require.NoError(t, SetMedicationImage(ctx, database, med.ID, []byte{0xff, 0xd8, 0xff}, "image/jpeg"))

	data, mime, err = GetMedicationImage(ctx, database, med.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, "image/jpeg", mime)

	assert.ErrorIs(t, SetMedicationImage(ctx, database, "missing", []byte{1}, "image/jpeg"), model.ErrNotFound)
}
