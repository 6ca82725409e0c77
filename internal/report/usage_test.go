package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/cmas/internal/model"
)

func TestWriteUsage(t *testing.T) {
	records := []model.UsageRecord{
		{MedicationName: "Paracetamol", QuantityUsed: 5, UserName: "thandi", Notes: "ward 3", Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{MedicationName: "Amoxicillin", QuantityUsed: 2, UserName: "sipho", Timestamp: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUsage(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{usageSheet}, f.GetSheetList())

	rows, err := f.GetRows(usageSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "Medication", "Quantity", "User", "Notes"}, rows[0])
	assert.Equal(t, "Paracetamol", rows[1][1])
	assert.Equal(t, "5", rows[1][2])
	assert.Equal(t, "ward 3", rows[1][4])
	assert.Equal(t, "sipho", rows[2][3])
}

func TestWriteUsageEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUsage(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(usageSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
