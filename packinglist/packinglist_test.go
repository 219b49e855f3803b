package packinglist_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/shipdoc/packinglist"
	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/record"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestRegistered(t *testing.T) {
	assert.True(t, parser.IsRegistered(packinglist.Name))
	assert.Contains(t, parser.Available(), "PackageList")

	p, ok := parser.Resolve(context.Background(), "PackageList")
	require.True(t, ok)
	assert.Equal(t, "PackageList", p.Name())
}

func TestFields_ExternalOrder(t *testing.T) {
	want := []string{
		"入库日期", "Cust. Code", "DF Code", "PO No", "Device Code", "Device",
		"OSAT Device", "OSAT.Lot no", "Lot No", "Wafer ID", "Lot Type",
		"加工模式", "BIN", "Good Qty", "Reject Qty", "Datecode",
	}
	assert.Equal(t, want, packinglist.New().Fields().External())
}

func TestRun_Fixture(t *testing.T) {
	text := readFixture(t, "packing_list.txt")

	records, err := packinglist.New().Run(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, records, 5)

	for i, r := range records {
		assert.Len(t, r, 16, "every field present")
		assert.Equal(t, "2024-05-16", r["入库日期"])
		assert.Equal(t, "", r["Cust. Code"])
		assert.Equal(t, "DF_SH", r["DF Code"])
		assert.Equal(t, "PO24K0001", r["PO No"])
		assert.Equal(t, "SDC100.01.02", r["Device Code"])
		assert.Equal(t, "DEV-A100", r["Device"])
		assert.Equal(t, "SDC-7781", r["OSAT Device"])
		assert.Equal(t, "L24051601", r["OSAT.Lot no"])
		assert.Equal(t, "L24051601", r["Lot No"])
		assert.Equal(t, string(rune('1'+i)), r["Wafer ID"])
		assert.Equal(t, "K", r["Lot Type"])
		assert.Equal(t, "", r["加工模式"])
		assert.Equal(t, "", r["BIN"])
		assert.Equal(t, "50", r["Good Qty"])
		assert.Equal(t, "", r["Reject Qty"])
		assert.Equal(t, "", r["Datecode"])
	}
}

func TestRun_SharedFieldsAcrossWafers(t *testing.T) {
	text := readFixture(t, "packing_list.txt")
	p := packinglist.New()

	records, err := p.Run(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	for _, name := range p.Fields().External() {
		if name == "Wafer ID" {
			continue
		}
		for _, r := range records[1:] {
			assert.Equal(t, records[0][name], r[name], "field %s", name)
		}
	}
}

func TestRun_NoWafers(t *testing.T) {
	text := "CTM ORDER NO. PO24K0001\nDATE 2024-05-16\n\nItem   Material\n1      SDC-7781/DEV-A100\n"

	records, err := packinglist.New().Run(context.Background(), text)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRun_MissingValuesAreEmpty(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, r record.Record)
	}{
		{
			name: "no order number",
			text: "Wafer ID: #7",
			check: func(t *testing.T, r record.Record) {
				assert.Equal(t, "", r["PO No"])
				assert.Equal(t, "", r["Lot Type"])
				assert.Equal(t, "", r["Device"])
				assert.Equal(t, "", r["Lot No"])
				assert.Equal(t, "7", r["Wafer ID"])
			},
		},
		{
			name: "short order number",
			text: "CTM ORDER NO. PO2\nWafer ID: 3,4",
			check: func(t *testing.T, r record.Record) {
				assert.Equal(t, "PO2", r["PO No"])
				assert.Equal(t, "", r["Lot Type"])
			},
		},
		{
			name: "device without slash",
			text: "Item   Material        Lot No\n1      SDC-7781        L1/25\n       Wafer ID: #9\n",
			check: func(t *testing.T, r record.Record) {
				assert.Equal(t, "SDC-7781", r["OSAT Device"])
				assert.Equal(t, "", r["Device"])
				assert.Equal(t, "L1", r["Lot No"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := packinglist.New().Run(context.Background(), tt.text)
			require.NoError(t, err)
			require.NotEmpty(t, records)
			assert.Len(t, records[0], 16)
			tt.check(t, records[0])
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := packinglist.New().Run(ctx, "Wafer ID: 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "PackageList", perr.Parser)
}
