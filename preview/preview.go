// Package preview renders parse results as terminal tables.
package preview

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/randalmurphal/shipdoc/record"
)

const defaultWidth = 120

// Options controls rendering.
type Options struct {
	// Width is the terminal width in cells. Zero means no limit.
	Width int

	// MaxCell truncates cell text to this many cells. Zero means no limit.
	MaxCell int

	// Vertical renders one key/value table per row. Tables wider than
	// Width switch to it automatically.
	Vertical bool
}

// ForFile returns options sized to f when it is a terminal.
func ForFile(f *os.File) Options {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return Options{}
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		w = defaultWidth
	}
	return Options{Width: w, MaxCell: 40}
}

// Records writes records as a table with the given column order.
func Records(w io.Writer, title string, columns []string, records []record.Record, opts Options) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values(columns)
	}
	return Table(w, title, columns, rows, opts)
}

// Table writes a titled table.
func Table(w io.Writer, title string, headers []string, rows [][]string, opts Options) error {
	re := lipgloss.NewRenderer(w)
	titleStyle := re.NewStyle().Bold(true)
	headerStyle := re.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := re.NewStyle().Padding(0, 1)
	borderStyle := re.NewStyle().Foreground(lipgloss.Color("8"))

	cut := func(s string) string {
		if opts.MaxCell > 0 {
			return runewidth.Truncate(s, opts.MaxCell, "…")
		}
		return s
	}
	headers = mapStrings(headers, cut)
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = mapStrings(row, cut)
	}
	rows = cells

	styled := func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	}

	var out []string
	if title != "" {
		out = append(out, titleStyle.Render(title))
	}

	if opts.Vertical || (opts.Width > 0 && naturalWidth(headers, rows) > opts.Width) {
		for i, row := range rows {
			kv := make([][]string, 0, len(headers))
			for j, h := range headers {
				v := ""
				if j < len(row) {
					v = row[j]
				}
				kv = append(kv, []string{h, v})
			}
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(borderStyle).
				Headers("#"+strconv.Itoa(i+1), "").
				Rows(kv...).
				StyleFunc(styled)
			out = append(out, t.String())
		}
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(styled)
		out = append(out, t.String())
	}

	out = append(out, fmt.Sprintf("%d row(s)", len(rows)))
	for _, s := range out {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}

// naturalWidth estimates the rendered width: the widest cell of each column
// plus padding and one border per column.
func naturalWidth(headers []string, rows [][]string) int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(v))
			}
		}
	}
	total := 1
	for _, w := range widths {
		total += w + 3
	}
	return total
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}
