// Package sheet writes parsed records to xlsx workbooks.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/randalmurphal/shipdoc/record"
)

const (
	maxSheetName = 31
	minColWidth  = 8
	maxColWidth  = 60
)

// Table is one worksheet: a header row and its data rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// FromRecords lays records out as a Table with the given column order.
func FromRecords(name string, columns []string, records []record.Record) Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values(columns)
	}
	return Table{Name: name, Columns: columns, Rows: rows}
}

// Write saves tables to path as an xlsx workbook, one worksheet per table,
// creating the parent directory when needed.
func Write(path string, tables ...Table) (err error) {
	if len(tables) == 0 {
		return fmt.Errorf("write xlsx: no tables")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close xlsx: %w", cerr)
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := uniqueName(SheetName(t.Name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("write xlsx: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := writeTable(f, name, t, header); err != nil {
			return fmt.Errorf("write xlsx sheet %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t Table, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &t.Columns); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for col, width := range columnWidths(t) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// columnWidths sizes each column to its widest cell in display cells, so
// CJK headers get room for their double-width characters.
func columnWidths(t Table) []float64 {
	widths := make([]float64, len(t.Columns))
	measure := func(i int, s string) {
		if i >= len(widths) {
			return
		}
		w := float64(runewidth.StringWidth(s) + 2)
		if w > widths[i] {
			widths[i] = w
		}
	}
	for i, c := range t.Columns {
		measure(i, c)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			measure(i, v)
		}
	}
	for i := range widths {
		widths[i] = max(minColWidth, min(maxColWidth, widths[i]))
	}
	return widths
}

// SheetName makes s a valid worksheet name: forbidden characters become '_'
// and the name is cut to 31 characters.
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.Trim(s, "'"))
	if s == "" {
		return "Sheet1"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// Read loads every worksheet of the workbook at path. The first row of each
// sheet is taken as the header.
func Read(path string) (tables []Table, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close xlsx: %w", cerr)
		}
	}()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		t := Table{Name: name, Rows: [][]string{}}
		if len(rows) > 0 {
			t.Columns = rows[0]
			t.Rows = rows[1:]
		}
		tables = append(tables, t)
	}
	return tables, nil
}
