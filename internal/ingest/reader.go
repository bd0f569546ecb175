package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fryerbot/internal/domain/catalogModel"

	"github.com/xuri/excelize/v2"
)

// CatalogReader reads the supplier sheet, Excel or CSV.
type CatalogReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

func NewCatalogReader(filePath string) (*CatalogReader, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		return &CatalogReader{filePath: filePath, fileType: "xlsx"}, nil
	case ".csv":
		return &CatalogReader{filePath: filePath, fileType: "csv"}, nil
	default:
		return nil, fmt.Errorf("unsupported file format %q, expected .xlsx, .xls or .csv", filepath.Ext(filePath))
	}
}

// ReadRows returns header-keyed rows in sheet order.
func (r *CatalogReader) ReadRows() ([]catalogModel.Row, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog file not found: %s", r.filePath)
	}

	var raw [][]string
	var err error
	switch r.fileType {
	case "csv":
		raw, err = r.readCSV()
	default:
		raw, err = r.readExcel()
	}
	if err != nil {
		return nil, err
	}

	if len(raw) < 2 {
		return nil, fmt.Errorf("catalog must have a header row and at least one data row")
	}

	return rowsFromCells(raw), nil
}

func (r *CatalogReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// the supplier sheet always lives on the first sheet
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets in Excel file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (r *CatalogReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func rowsFromCells(raw [][]string) []catalogModel.Row {
	headers := make([]string, len(raw[0]))
	for i, header := range raw[0] {
		headers[i] = strings.TrimSpace(header)
	}

	rows := make([]catalogModel.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(catalogModel.Row, len(headers))
		for j, cell := range cells {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
