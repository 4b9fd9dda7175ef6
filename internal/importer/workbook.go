package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an .xlsx workbook. Rows are returned as
// excelize reports them: ragged, trailing empty cells omitted.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// ReadCSV reads a single sheet from CSV data
func ReadCSV(r io.Reader, name string) ([]Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return []Sheet{{Name: name, Rows: rows}}, nil
}

// ReadFile picks the reader from the file extension. A CSV file becomes one
// sheet named after the file.
func ReadFile(path string) ([]Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(f)
	case ".csv":
		return ReadCSV(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .xlsx or .csv)", ext)
	}
}
