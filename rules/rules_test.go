package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/record"
)

func fixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "packing_list.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestParse_FieldForms(t *testing.T) {
	r, err := Parse([]byte(`
name: x
fields:
  - A
  - {name: B, external: Bee}
`))
	require.NoError(t, err)
	assert.Equal(t, []FieldSpec{{Name: "A"}, {Name: "B", External: "Bee"}}, r.Fields)
}

func TestParse_BadField(t *testing.T) {
	_, err := Parse([]byte("name: x\nfields:\n  - [a, b]\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name: "valid",
			rule: Rule{Name: "x", Literals: map[string]string{"A": "1"}, Fields: []FieldSpec{{Name: "A"}}},
		},
		{
			name:    "missing name",
			rule:    Rule{Fields: []FieldSpec{{Name: "A"}}},
			wantErr: "name is required",
		},
		{
			name:    "no fields",
			rule:    Rule{Name: "x"},
			wantErr: "fields are required",
		},
		{
			name:    "both detectors",
			rule:    Rule{Name: "x", Table: TableRule{Prefix: "Item", Pattern: "^Item"}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: "not both",
		},
		{
			name:    "duplicate field",
			rule:    Rule{Name: "x", Fields: []FieldSpec{{Name: "A"}, {Name: "A"}}},
			wantErr: "declared twice",
		},
		{
			name:    "undeclared capture",
			rule:    Rule{Name: "x", Captures: map[string]CaptureRule{"B": {Pattern: "b"}}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: `field "B" not declared`,
		},
		{
			name:    "undeclared character source",
			rule:    Rule{Name: "x", Characters: map[string]CharacterRule{"A": {From: "C"}}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: `field "C" not declared`,
		},
		{
			name:    "undeclared repeat",
			rule:    Rule{Name: "x", Repeat: &RepeatRule{Field: "W", Pattern: "(x)", Group: 1}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: `field "W" not declared`,
		},
		{
			name:    "negative column",
			rule:    Rule{Name: "x", Columns: map[string]ColumnRule{"A": {Column: -1}}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: "negative index",
		},
		{
			name: "chained characters",
			rule: Rule{
				Name: "x",
				Characters: map[string]CharacterRule{
					"A": {From: "B", Index: 0},
					"B": {From: "C", Index: 0},
				},
				Fields: []FieldSpec{{Name: "A"}, {Name: "B"}, {Name: "C"}},
			},
			wantErr: `reads character field "B"`,
		},
		{
			name:    "columns without table",
			rule:    Rule{Name: "x", Columns: map[string]ColumnRule{"A": {Column: 1}}, Fields: []FieldSpec{{Name: "A"}}},
			wantErr: "columns need a table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRule))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompile_BadExpressions(t *testing.T) {
	base := func() *Rule {
		return &Rule{Name: "x", Fields: []FieldSpec{{Name: "A"}}}
	}

	r := base()
	r.Table.Pattern = "("
	_, err := Compile(r)
	assert.ErrorIs(t, err, ErrInvalidRule)

	r = base()
	r.Captures = map[string]CaptureRule{"A": {Pattern: "(a)", Group: 3}}
	_, err = Compile(r)
	assert.ErrorIs(t, err, ErrInvalidRule)

	r = base()
	r.Repeat = &RepeatRule{Field: "A", Pattern: "(", Group: 1}
	_, err = Compile(r)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRun_PackingListRule(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "rules", "packing.yml"))
	require.NoError(t, err)
	p, err := Compile(r)
	require.NoError(t, err)

	assert.Equal(t, "PackingListRule", p.Name())
	assert.Equal(t, []string{
		"入库日期", "PO No", "DF_Code", "Device", "OSAT Device", "Lot No",
		"Wafer ID", "Lot Type", "Good Qty", "Remark",
	}, p.Fields().External())

	records, err := p.Run(context.Background(), fixture(t))
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, record.Record{
		"入库日期":        "2024-05-16",
		"PO No":       "PO24K0001",
		"DF_Code":     "DF_SH",
		"Device":      "DEV-A100",
		"OSAT Device": "SDC-7781",
		"Lot No":      "L24051601",
		"Wafer ID":    "1",
		"Lot Type":    "K",
		"Good Qty":    "50",
		"Remark":      "OK",
	}, records[0])
	assert.Equal(t, "5", records[4]["Wafer ID"])
}

func TestRun_WithoutRepeatYieldsOneRecord(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "rules", "summary.yaml"))
	require.NoError(t, err)
	p, err := Compile(r)
	require.NoError(t, err)

	records, err := p.Run(context.Background(), fixture(t))
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"PO_No": "PO24K0001"}}, records)
}

func TestRun_CaptureRemoveAndDefault(t *testing.T) {
	r, err := Parse([]byte(`name: Cleanup
captures:
  Wafers: {pattern: 'Wafer ID:\s*(\S+)', group: 1, remove: '#'}
  Grade: {pattern: 'GRADE\s+(\S+)', group: 1, default: A}
  Note: {pattern: 'NOTE\s+(\S+)', group: 1}
fields: [Wafers, Grade, Note]
`))
	require.NoError(t, err)
	p, err := Compile(r)
	require.NoError(t, err)

	records, err := p.Run(context.Background(), "Wafer ID: #1,#2,#3")
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"Wafers": "1,2,3", "Grade": "A", "Note": ""}}, records)

	records, err = p.Run(context.Background(), "Wafer ID: 4\nGRADE B")
	require.NoError(t, err)
	assert.Equal(t, "B", records[0]["Grade"])
}

func TestRun_NoTableLeavesColumnsEmpty(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "rules", "packing.yml"))
	require.NoError(t, err)
	p, err := Compile(r)
	require.NoError(t, err)

	records, err := p.Run(context.Background(), "CTM ORDER NO. PO1\nWafer ID: 3")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0]["Device"])
	assert.Equal(t, "", records[0]["Remark"])
	assert.Equal(t, "", records[0]["Lot Type"])
	assert.Equal(t, "3", records[0]["Wafer ID"])
}

func TestDiscover(t *testing.T) {
	rules, err := Discover(context.Background(), filepath.Join("testdata", "rules"))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "OrderSummary", rules[0].Name)
	assert.Equal(t, "PackingListRule", rules[1].Name)
	assert.Equal(t, filepath.Join("testdata", "rules", "summary.yaml"), rules[0].Path)
}

func TestDiscover_MissingDir(t *testing.T) {
	rules, err := Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Nil(t, rules)
}

func TestDiscover_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("name: [unclosed"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yml"), []byte("name: good\nfields: [A]\n"), 0o644))

	rules, err := Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "good", rules[0].Name)
}

func TestLoadDir_Registers(t *testing.T) {
	defer parser.Unregister("OrderSummary")
	defer parser.Unregister("PackingListRule")

	names, err := LoadDir(context.Background(), filepath.Join("testdata", "rules"))
	require.NoError(t, err)
	assert.Equal(t, []string{"OrderSummary", "PackingListRule"}, names)

	p, ok := parser.Resolve(context.Background(), "PackingListRule")
	require.True(t, ok)
	assert.Equal(t, "PackingListRule", p.Name())
}

func TestLoadDir_NameCollision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("name: twin\nfields: [A]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("name: twin\nfields: [B]\n"), 0o644))

	_, err := LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.False(t, parser.IsRegistered("twin"))
}

func TestLoadDir_InvalidRule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("name: nofields\n"), 0o644))

	_, err := LoadDir(context.Background(), dir)
	require.Error(t, err)

	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "nofields", perr.Parser)
}
