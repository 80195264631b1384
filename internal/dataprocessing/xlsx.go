package dataprocessing

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

// ReadWorkbook extracts the rows of the first populated sheet of an XLSX
// upload. Workbook uploads bypass byte-level encoding and delimiter
// detection; the extracted rows feed the same normalize/validate/build
// pipeline as delimited text.
func ReadWorkbook(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewFormatDetectionError("failed to open workbook", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if hasContent(rows) {
			return rows, nil
		}
	}
	return nil, apperrors.NewFormatDetectionError("workbook contains no populated sheet", nil)
}

func hasContent(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if cell != "" {
				return true
			}
		}
	}
	return false
}
