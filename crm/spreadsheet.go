// ABOUTME: Follow-up sheet export to an Excel workbook
// ABOUTME: One row per record, commission value column and a totals row
package crm

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sustentalski/salescrm/models"
)

// FollowupSheetName is the worksheet holding the follow-up rows.
const FollowupSheetName = "Follow-up"

// FollowupWorkbook renders records as a workbook. Columns follow
// FollowupFields, prefixed by the client name and suffixed by the
// commission value.
func FollowupWorkbook(records []models.FollowupRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", FollowupSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet := FollowupSheetName

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Cliente"}
	for _, fld := range FollowupFields {
		headers = append(headers, fld.Label)
	}
	headers = append(headers, "Valor comissão")

	for i, h := range headers {
		cell, err := setCell(f, sheet, i+1, 1, h)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header %s: %w", cell, err)
		}
	}

	for r, rec := range records {
		row := r + 2
		values := []any{rec.ClientName}
		for _, fld := range FollowupFields {
			switch fld.Name {
			case "estimatedValue":
				values = append(values, rec.EstimatedValue.Float())
			case "commissionPercent":
				values = append(values, rec.Commission())
			default:
				values = append(values, FollowupFieldValue(rec, fld.Name))
			}
		}
		values = append(values, rec.CommissionValue())
		for i, v := range values {
			if _, err := setCell(f, sheet, i+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	m := ComputeMetrics(records)
	totalRow := len(records) + 2
	last := len(headers)
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create summary style: %w", err)
	}

	first, err := setCell(f, sheet, 1, totalRow, fmt.Sprintf("Total (%d indicações, %d fechamentos)", m.TotalIndications, m.ClosedCount))
	if err != nil {
		return nil, err
	}
	if _, err := setCell(f, sheet, last-2, totalRow, m.TotalEstimated); err != nil {
		return nil, err
	}
	commCell, err := setCell(f, sheet, last, totalRow, m.TotalCommission)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, first, commCell, summaryStyle); err != nil {
		return nil, fmt.Errorf("failed to style totals row: %w", err)
	}

	endCol, err := excelize.ColumnNumberToName(last)
	if err != nil {
		return nil, fmt.Errorf("failed to name column %d: %w", last, err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", endCol, 16); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	return f, nil
}

// setCell writes v at (col, row) and returns the cell name.
func setCell(f *excelize.File, sheet string, col, row int, v any) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("failed to address cell (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", cell, err)
	}
	return cell, nil
}

// ExportFollowupSheet writes the current follow-up sheet to path.
func (s *State) ExportFollowupSheet(path string) error {
	f, err := FollowupWorkbook(s.followups.Get())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
