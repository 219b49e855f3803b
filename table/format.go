package table

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/randalmurphal/shipdoc/logging"
)

// Formatted is a sliced table.
type Formatted struct {
	// Headers holds one name per output column, left to right.
	Headers []string

	// Rows holds the logical rows. A row has at least len(Headers) fields;
	// continuation lines merged into it may add more.
	Rows [][]string
}

// Cell returns the field at row, col, or "" when either is out of range.
func (f Formatted) Cell(row, col int) string {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row]) {
		return ""
	}
	return f.Rows[row][col]
}

// Format slices the header and row lines of info at its offsets.
//
// Header continuation lines extend the labels of the columns they sit under.
// A fragment is glued to a label that ends in punctuation ("Lot No/" +
// "Wafer ID"); otherwise it becomes a stacked label of its own and yields an
// extra header name. This is a heuristic tuned on packing lists, not a
// general layout rule.
//
// A row line whose first field is empty continues the previous logical row,
// unless one of its other fields contains a colon, in which case it starts a
// new row without the empty first field.
func Format(ctx context.Context, info Info) Formatted {
	log := logging.FromContext(ctx)

	out := Formatted{Headers: []string{}, Rows: [][]string{}}
	if len(info.Headers) == 0 || len(info.Offsets) == 0 {
		return out
	}

	for _, label := range headerLabels(info.Headers, info.Offsets) {
		out.Headers = append(out.Headers, label...)
	}

	for _, line := range info.Rows {
		fields := sliceRow([]rune(line), info.Offsets)
		if fields[0] != "" || len(fields) == 1 {
			out.Rows = append(out.Rows, fields)
			continue
		}

		rest := fields[1:]
		switch {
		case anyContains(rest, ":"):
			out.Rows = append(out.Rows, rest)
		case len(out.Rows) == 0:
			out.Rows = append(out.Rows, fields)
		default:
			last := len(out.Rows) - 1
			out.Rows[last] = append(out.Rows[last], rest...)
		}
	}

	for i, row := range out.Rows {
		for len(row) < len(out.Headers) {
			row = append(row, "")
		}
		out.Rows[i] = row
	}

	log.Debug("table formatted",
		slog.Any("headers", out.Headers),
		slog.Int("rows", len(out.Rows)))

	return out
}

// headerLabels returns the label parts of every column. Most columns have a
// single part; stacked two-line labels have more.
func headerLabels(headers []string, offsets []int) [][]string {
	labels := make([][]string, len(offsets))

	first := []rune(headers[0])
	for i := range offsets {
		start, end := columnSpan(offsets, i, len(first))
		labels[i] = []string{trimRunes(first, start, end)}
	}

	for _, header := range headers[1:] {
		line := []rune(header)
		for i := range offsets {
			lower := 0
			if i > 0 {
				lower = offsets[i-1]
			}
			start := snapLeft(line, offsets[i], lower)
			_, end := columnSpan(offsets, i, len(line))
			fragment := trimRunes(line, start, end)
			if fragment == "" {
				continue
			}
			labels[i] = joinLabel(labels[i], fragment)
		}
	}

	return labels
}

// joinLabel adds a continuation fragment to a column's label parts.
func joinLabel(parts []string, fragment string) []string {
	last := len(parts) - 1
	switch {
	case parts[last] == "":
		parts[last] = fragment
	case endsInNonWord(parts[last]):
		parts[last] += fragment
	default:
		parts = append(parts, fragment)
	}
	return parts
}

// sliceRow cuts a row line into fields. Each cut is moved left to the nearest
// space so that a token overhanging a column boundary lands whole in the
// column on its right. Cutting stops at the first offset past the end of the
// line and the remainder becomes the last field.
func sliceRow(line []rune, offsets []int) []string {
	fields := make([]string, 0, len(offsets))
	start := 0
	for _, offset := range offsets[1:] {
		if offset > len(line) {
			break
		}
		end := snapLeft(line, offset, start)
		fields = append(fields, trimRunes(line, start, end))
		start = end
	}
	return append(fields, trimRunes(line, start, len(line)))
}

// snapLeft moves a proposed cut position left until the rune before it is a
// space, stopping at lower. The result is never below lower. A position past
// the end of the line is clamped to the line length without moving, since
// there is no token there to protect. A proposed position at or below lower
// is returned as-is.
func snapLeft(line []rune, proposed, lower int) int {
	if proposed > len(line) {
		return len(line)
	}
	if lower < 0 {
		lower = 0
	}
	if proposed <= lower {
		return proposed
	}
	for proposed > lower && !unicode.IsSpace(line[proposed-1]) {
		proposed--
	}
	return proposed
}

// columnSpan returns the nominal [start, end) of column i clamped to n.
func columnSpan(offsets []int, i, n int) (int, int) {
	start := min(offsets[i], n)
	end := n
	if i+1 < len(offsets) {
		end = min(offsets[i+1], n)
	}
	return start, end
}

func trimRunes(line []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if start >= end {
		return ""
	}
	return strings.TrimSpace(string(line[start:end]))
}

func endsInNonWord(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	r := runes[len(runes)-1]
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func anyContains(fields []string, substr string) bool {
	for _, f := range fields {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}
