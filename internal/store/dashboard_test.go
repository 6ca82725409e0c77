package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/cmas/internal/db"
	"github.com/erazemk/cmas/internal/model"
)

func TestGetDashboardStatsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	stats, err := GetDashboardStats(context.Background(), database)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMedications)
	assert.NotNil(t, stats.RecentAlerts)
	assert.NotNil(t, stats.RecentUsage)
}

func TestGetDashboardStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateMedication(ctx, database, "Healthy", 100, 10, "tablets", "")
	CreateMedication(ctx, database, "AtThreshold", 10, 10, "tablets", "")
	empty, _ := CreateMedication(ctx, database, "Empty", 2, 5, "vials", "")
	deleted, _ := CreateMedication(ctx, database, "Deleted", 0, 5, "vials", "")
	DeleteMedication(ctx, database, deleted.ID)

	_, err := ApplyUsage(ctx, database, &model.UsageRecord{MedicationID: empty.ID, QuantityUsed: 2, UserID: "u", UserName: "u"})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		CreateAlert(ctx, database, &model.AlertRecord{
			MedicationID: empty.ID, MedicationName: "Empty", Message: "low",
			SentToPhone: "+27820000000", Status: model.AlertStatusSent,
		})
	}

	stats, err := GetDashboardStats(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalMedications)
	assert.Equal(t, 2, stats.LowStockCount)
	assert.Equal(t, 1, stats.CriticalStockCount)
	assert.Len(t, stats.RecentAlerts, 5)
	assert.Len(t, stats.RecentUsage, 1)
}
