package analytics

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	filesSheet   = "Files"
	queriesSheet = "Queries"
)

// ExportXLSX renders a record as a workbook with Files and Queries sheets.
func ExportXLSX(rec Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", filesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(queriesSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	rows := [][]any{{"Filename", "Words", "Pages"}}
	for _, file := range rec.Files {
		rows = append(rows, []any{file.Filename, file.Words, file.Pages})
	}
	if err := writeRows(f, filesSheet, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"#", "Query"}}
	for i, q := range rec.Queries {
		rows = append(rows, []any{i + 1, q})
	}
	if err := writeRows(f, queriesSheet, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
