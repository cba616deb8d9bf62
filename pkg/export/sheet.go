package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// ExcelWriter renders tables as xlsx workbooks with a bold header row.
type ExcelWriter struct {
	SheetName string
}

func (w *ExcelWriter) WriteSheet(t *Table) (content []byte, err error) {
	if t == nil {
		return nil, errors.New("table required")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing workbook: %w", cerr)
		}
	}()

	sheet := defaultSheetName
	if w.SheetName != "" && w.SheetName != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, w.SheetName); err != nil {
			return nil, fmt.Errorf("error naming sheet %s: %w", w.SheetName, err)
		}
		sheet = w.SheetName
	}

	header := make([]any, 0, len(t.Columns))
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		copy(row, r)
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return nil, fmt.Errorf("error styling header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("error resolving cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("error writing row %d: %w", row, err)
	}
	return nil
}

// ReadSheet returns the text of the first sheet of an xlsx document.
func ReadSheet(b []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
