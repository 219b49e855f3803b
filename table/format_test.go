package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func format(t *testing.T, text string, d Detector) Formatted {
	t.Helper()
	info, _ := Extract(context.Background(), lines(text), d, 0)
	return Format(context.Background(), info)
}

func TestFormat_SingleLineHeader(t *testing.T) {
	text := "Item   Description   Qty\n" +
		"1      Widget A      42"

	got := format(t, text, MustPattern(`^Item`))

	assert.Equal(t, []string{"Item", "Description", "Qty"}, got.Headers)
	assert.Equal(t, [][]string{{"1", "Widget A", "42"}}, got.Rows)
}

func TestFormat_RoundTripIgnoresPadding(t *testing.T) {
	info := Info{
		Offsets: []int{0, 10, 30},
		Headers: []string{"Code      Name                Amount"},
		Rows: []string{
			"A-1       first value         10.50",
			"B-22      second              7",
			"C         x y z               1000000",
		},
	}

	got := Format(context.Background(), info)

	assert.Equal(t, []string{"Code", "Name", "Amount"}, got.Headers)
	assert.Equal(t, [][]string{
		{"A-1", "first value", "10.50"},
		{"B-22", "second", "7"},
		{"C", "x y z", "1000000"},
	}, got.Rows)
}

func TestFormat_PackingListHeader(t *testing.T) {
	text := "Item   Material/                Lot No/          Qty      Remark\n" +
		"       Customer Device ID       Wafer Qty\n" +
		"1      SDC-7781/DEV-A100        L24051601/25     25       OK\n" +
		"       Wafer ID: #1,2,3,4,5\n" +
		"2      SDC-7781/DEV-A100        L24051602/25     25"

	got := format(t, text, MustPattern(`^([\S]+\s*)?Item`))

	assert.Equal(t, []string{
		"Item",
		"Material/Customer Device ID",
		"Lot No/Wafer Qty",
		"Qty",
		"Remark",
	}, got.Headers)
	assert.Equal(t, [][]string{
		{"1", "SDC-7781/DEV-A100", "L24051601/25", "25", "OK"},
		{"Wafer ID: #1,2,3,4,5", "", "", "", ""},
		{"2", "SDC-7781/DEV-A100", "L24051602/25", "25", ""},
	}, got.Rows)
}

func TestFormat_StackedLabelsBecomeSeparateHeaders(t *testing.T) {
	text := "No.   Gross      Net\n" +
		"      Weight     Weight\n" +
		"1     10.5       9.8"

	got := format(t, text, MustPattern(`^No\.`))

	// "No." ends in punctuation but has nothing below it; "Gross" and "Net"
	// end in letters, so their second lines stack as extra columns.
	assert.Equal(t, []string{"No.", "Gross", "Weight", "Net", "Weight"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"1", "10.5", "9.8", "", ""}, got.Rows[0])
}

func TestFormat_ContinuationRowMerges(t *testing.T) {
	text := "Item   Description   Qty\n" +
		"1      Widget A      42\n" +
		"       extra text    7"

	got := format(t, text, MustPattern(`^Item`))

	require.Len(t, got.Rows, 1, "continuation must not add a logical row")
	assert.Equal(t, []string{"1", "Widget A", "42", "extra text", "7"}, got.Rows[0])
}

func TestFormat_ColonStartsNewRow(t *testing.T) {
	info := Info{
		Offsets: []int{0, 7, 21},
		Headers: []string{"Item   Description   Qty"},
		Rows: []string{
			"1      Widget A      42",
			"       Note:         see box",
		},
	}

	got := Format(context.Background(), info)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"Note:", "see box", ""}, got.Rows[1])
}

func TestFormat_ColonInLaterFieldStartsNewRow(t *testing.T) {
	info := Info{
		Offsets: []int{0, 7, 21},
		Headers: []string{"Item   Description   Qty"},
		Rows: []string{
			"1      Widget A      42",
			"       lot           A:7",
		},
	}

	got := Format(context.Background(), info)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"lot", "A:7", ""}, got.Rows[1])
}

func TestFormat_LeadingContinuationKeepsRow(t *testing.T) {
	info := Info{
		Offsets: []int{0, 7, 21},
		Headers: []string{"Item   Description   Qty"},
		Rows:    []string{"       orphan        3"},
	}

	got := Format(context.Background(), info)

	assert.Equal(t, [][]string{{"", "orphan", "3"}}, got.Rows)
}

func TestFormat_OverhangingTokenMovesRight(t *testing.T) {
	text := "Item   Description   Qty\n" +
		"1      Widget ABCDEFGH 42"

	got := format(t, text, MustPattern(`^Item`))

	assert.Equal(t, [][]string{{"1", "Widget", "ABCDEFGH 42"}}, got.Rows)
}

func TestFormat_ShortRowPadded(t *testing.T) {
	info := Info{
		Offsets: []int{0, 7, 21},
		Headers: []string{"Item   Description   Qty"},
		Rows:    []string{"1      Widget"},
	}

	got := Format(context.Background(), info)

	assert.Equal(t, [][]string{{"1", "Widget", ""}}, got.Rows)
}

func TestFormat_EmptyInfo(t *testing.T) {
	got := Format(context.Background(), Info{})

	assert.NotNil(t, got.Headers)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
	assert.Equal(t, "", got.Cell(0, 1))
}

func TestFormat_HeaderWithoutRows(t *testing.T) {
	got := format(t, "Item   Description   Qty", MustPattern(`^Item`))

	assert.Equal(t, []string{"Item", "Description", "Qty"}, got.Headers)
	assert.Empty(t, got.Rows)
}

func TestFormatted_Cell(t *testing.T) {
	f := Formatted{Rows: [][]string{{"a", "b"}}}

	assert.Equal(t, "b", f.Cell(0, 1))
	assert.Equal(t, "", f.Cell(0, 2))
	assert.Equal(t, "", f.Cell(1, 0))
	assert.Equal(t, "", f.Cell(-1, 0))
}

func TestJoinLabel(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		fragment string
		want     []string
	}{
		{"punctuation glues", []string{"Lot No/"}, "Wafer ID", []string{"Lot No/Wafer ID"}},
		{"word stacks", []string{"Gross"}, "Weight", []string{"Gross", "Weight"}},
		{"empty label takes fragment", []string{""}, "Remark", []string{"Remark"}},
		{"stacked then punctuation", []string{"Gross", "Wt."}, "kg", []string{"Gross", "Wt.kg"}},
		{"cjk counts as word", []string{"数量"}, "PCS", []string{"数量", "PCS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinLabel(tt.parts, tt.fragment))
		})
	}
}
