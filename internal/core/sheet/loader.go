// Package sheet reads one workbook sheet into a RawGrid and locates its
// header row.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Load reads the first sheet of a workbook (or a CSV export) into a
// RawGrid. Only the first sheet is ever read; cell types survive as far as
// the underlying format preserves them (date-typed cells arrive as serial
// numbers and are resolved by the locale parsers).
func Load(data []byte, filename string) (*domain.RawGrid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return loadXLSX(data)
	case ".xls":
		grid, err := loadXLS(data)
		if err != nil {
			// some exports carry a .xls name over xlsx content
			if g, errX := loadXLSX(data); errX == nil {
				return g, nil
			}
			return nil, err
		}
		return grid, nil
	case ".csv":
		return loadCSV(data)
	}
	return nil, fmt.Errorf("unsupported workbook file format: %s", filepath.Ext(filename))
}

func loadXLSX(data []byte) (*domain.RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return gridFromStrings(rows), nil
}

func loadXLS(data []byte) (*domain.RawGrid, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("reading first sheet: %w", err)
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return gridFromStrings(rows), nil
}

// loadCSV accepts semicolon- or comma-separated exports. UTF-8 input
// passes through; anything else is decoded as Windows-1254, the Turkish
// codepage the legacy source systems emit.
func loadCSV(data []byte) (*domain.RawGrid, error) {
	decoded := data
	if !utf8.Valid(data) {
		if d, _, err := transform.Bytes(charmap.Windows1254.NewDecoder(), data); err == nil {
			decoded = d
		}
	}
	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || onlySingleColumn(records) {
		reader = csv.NewReader(bytes.NewReader(decoded))
		reader.Comma = ','
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		if records, err = reader.ReadAll(); err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
	}
	return gridFromStrings(records), nil
}

func onlySingleColumn(records [][]string) bool {
	for _, r := range records {
		if len(r) > 1 {
			return false
		}
	}
	return true
}

func gridFromStrings(rows [][]string) *domain.RawGrid {
	grid := &domain.RawGrid{Rows: make([][]domain.Cell, len(rows))}
	for i, row := range rows {
		cells := make([]domain.Cell, len(row))
		for j, raw := range row {
			cells[j] = classify(raw)
		}
		grid.Rows[i] = cells
	}
	return grid
}

// classify tags a raw cell value. Plain decimal text counts as numeric;
// locale-formatted numbers ("1.234,56") stay text and are resolved by the
// locale parser downstream.
func classify(raw string) domain.Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Cell{Kind: domain.CellEmpty}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.Cell{Kind: domain.CellNumber, Number: f, Text: s}
	}
	return domain.Cell{Kind: domain.CellText, Text: raw}
}

// CellString renders a cell back to text for header labels and free-text
// fields.
func CellString(c domain.Cell) string {
	switch c.Kind {
	case domain.CellText:
		return strings.TrimSpace(c.Text)
	case domain.CellNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case domain.CellDate:
		return c.Date.Format("02.01.2006")
	}
	return ""
}
