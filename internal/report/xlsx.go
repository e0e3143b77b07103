package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// BatchRow is one folder's line in the batch summary workbook.
type BatchRow struct {
	Folder    string
	Status    string
	Filled    int
	Uncertain int
	Missing   int
	Duration  time.Duration
	Error     string
}

// WriteBatchSummary writes one row per processed folder plus a header.
// Row order follows the input slice.
func WriteBatchSummary(path string, rows []BatchRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	headers := []string{"Folder", "Status", "Filled", "Uncertain", "Missing", "Duration (s)", "Error"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
	}

	for r, row := range rows {
		values := []any{
			row.Folder,
			row.Status,
			row.Filled,
			row.Uncertain,
			row.Missing,
			row.Duration.Seconds(),
			row.Error,
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
