package naming

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runTime = time.Date(2024, 5, 16, 9, 30, 0, 0, time.UTC)

func TestNewVars(t *testing.T) {
	v := NewVars(runTime, "/tmp/att/202405160930_[PackageList] PL-001.PDF", "PackageList", "s")

	assert.Equal(t, "202405160930_[PackageList] PL-001", v.Stem)
	assert.Equal(t, "PackageList", v.Parser)
}

func TestNamer_Name(t *testing.T) {
	vars := Vars{Time: runTime, Stem: "PL-001", Parser: "PackageList", Subject: "[PackageList] May/shipment"}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"default", "{{timestamp}}_{{stem}}.xlsx", "202405160930_PL-001.xlsx"},
		{"extension added", "{{stem}}", "PL-001.xlsx"},
		{"helpers", "{{lower parser}}-{{upper stem}}.xlsx", "packagelist-PL-001.xlsx"},
		{"date with layout", `{{date time "2006-01-02"}}_{{stem}}`, "2024-05-16_PL-001.xlsx"},
		{"conditional", "{{#if subject}}{{truncate subject 13}}_{{/if}}{{stem}}", "[PackageList]_PL-001.xlsx"},
		{"separators replaced", "{{subject}}.xlsx", "[PackageList] May_shipment.xlsx"},
		{"go syntax passes through", "{{.stem}}.xlsx", "PL-001.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.tmpl, ".xlsx")
			require.NoError(t, err)

			got, err := n.Name(vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamer_ConditionalFalse(t *testing.T) {
	n, err := New("{{#if subject}}{{subject}}_{{/if}}{{stem}}", "")
	require.NoError(t, err)

	got, err := n.Name(Vars{Time: runTime, Stem: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestNamer_Path(t *testing.T) {
	n, err := New("{{timestamp}}_{{stem}}.xlsx", ".xlsx")
	require.NoError(t, err)

	got, err := n.Path("out", Vars{Time: runTime, Stem: "x", Parser: "PackageList"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "PackageList", "202405160930_x.xlsx"), got)
}

func TestNamer_Errors(t *testing.T) {
	_, err := New("  ", "")
	assert.True(t, errors.Is(err, ErrEmpty))

	_, err = New("{{#if stem}}unclosed", "")
	assert.True(t, errors.Is(err, ErrParse))

	n, err := New("{{unknown}}", "")
	require.NoError(t, err)
	_, err = n.Name(Vars{Time: runTime})
	assert.True(t, errors.Is(err, ErrExecute))

	n, err = New("{{subject}}", "")
	require.NoError(t, err)
	_, err = n.Name(Vars{Time: runTime})
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestNamer_Variables(t *testing.T) {
	n, err := New(`{{#if subject}}{{sanitize subject}}{{/if}}{{date time "x"}}{{stem}}`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"stem", "subject", "time"}, n.Variables())
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.xlsx", "plain.xlsx"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  ..hidden  ", "hidden"},
		{"入库\t清单", "入库清单"},
		{"..", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestConvertSyntax(t *testing.T) {
	helpers := map[string]bool{"upper": true, "truncate": true}

	assert.Equal(t, "{{.a}}", convertSyntax("{{a}}", helpers))
	assert.Equal(t, "{{if .a}}x{{end}}", convertSyntax("{{#if a}}x{{/if}}", helpers))
	assert.Equal(t, `{{truncate .a 3}}`, convertSyntax("{{truncate a 3}}", helpers))
	assert.Equal(t, `{{upper "lit"}}`, convertSyntax(`{{upper "lit"}}`, helpers))
	assert.Equal(t, "{{else}}", convertSyntax("{{else}}", helpers))
}
