package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/shipdoc/record"
)

var columns = []string{"入库日期", "PO No", "Wafer ID", "Remark"}

func TestFromRecords(t *testing.T) {
	records := []record.Record{
		{"入库日期": "2024-05-16", "PO No": "PO1", "Wafer ID": "1", "Remark": ""},
		{"PO No": "PO1", "Wafer ID": "2"},
	}

	tbl := FromRecords("PackageList", columns, records)

	assert.Equal(t, "PackageList", tbl.Name)
	assert.Equal(t, [][]string{
		{"2024-05-16", "PO1", "1", ""},
		{"", "PO1", "2", ""},
	}, tbl.Rows)
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "PackageList", "202405160930_pl.xlsx")
	tbl := Table{
		Name:    "PackageList",
		Columns: columns,
		Rows: [][]string{
			{"2024-05-16", "PO1", "1", "ok"},
			{"2024-05-16", "", "2", "ok"},
		},
	}

	require.NoError(t, Write(path, tbl))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tbl, got[0])
}

func TestWrite_MultipleSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")

	require.NoError(t, Write(path,
		Table{Name: "A", Columns: []string{"x"}, Rows: [][]string{{"1"}}},
		Table{Name: "a", Columns: []string{"y"}},
		Table{Name: "B/C", Columns: []string{"z"}},
	))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "a_2", got[1].Name)
	assert.Equal(t, "B_C", got[2].Name)
	assert.Empty(t, got[1].Rows)
}

func TestWrite_NoTables(t *testing.T) {
	assert.Error(t, Write(filepath.Join(t.TempDir(), "x.xlsx")))
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorContains(t, err, "open xlsx")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "PackageList", SheetName("PackageList"))
	assert.Equal(t, "a_b_c", SheetName("a/b:c"))
	assert.Equal(t, "Sheet1", SheetName(""))
	assert.Equal(t, strings.Repeat("x", 31), SheetName(strings.Repeat("x", 40)))
}

func TestColumnWidths(t *testing.T) {
	w := columnWidths(Table{
		Columns: []string{"入库日期", "a"},
		Rows:    [][]string{{"", strings.Repeat("z", 100)}},
	})

	assert.Equal(t, []float64{10, 60}, w)
}
