// Package report builds spreadsheet exports.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/cmas/internal/model"
)

const usageSheet = "Usage"

// ContentTypeXLSX is the MIME type of the generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var usageHeaders = []any{"Timestamp", "Medication", "Quantity", "User", "Notes"}
var usageWidths = []float64{22, 30, 10, 20, 40}

// WriteUsage writes usage records as an XLSX workbook to w.
func WriteUsage(w io.Writer, records []model.UsageRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", usageSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	timestamp, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("creating timestamp style: %w", err)
	}

	if err := f.SetSheetRow(usageSheet, "A1", &usageHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(usageHeaders))
	if err := f.SetCellStyle(usageSheet, "A1", lastCol+"1", header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	for i, width := range usageWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(usageSheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{r.Timestamp.UTC(), r.MedicationName, r.QuantityUsed, r.UserName, r.Notes}
		if err := f.SetSheetRow(usageSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if len(records) > 0 {
		last, _ := excelize.CoordinatesToCellName(1, len(records)+1)
		if err := f.SetCellStyle(usageSheet, "A2", last, timestamp); err != nil {
			return fmt.Errorf("styling timestamps: %w", err)
		}
	}

	if err := f.SetPanes(usageSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
