package table

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/randalmurphal/shipdoc/logging"
)

// Info is a table as found in the text, before slicing.
type Info struct {
	// Offsets are the rune positions where columns start in the first header
	// line. Strictly increasing, first is 0. Empty when no table was found.
	Offsets []int

	// Headers are the raw header lines, the detector match first.
	Headers []string

	// Rows are the raw body lines, blank lines removed.
	Rows []string
}

// Empty reports whether no header was found.
func (i Info) Empty() bool {
	return len(i.Headers) == 0
}

// Extract locates the table opened by d at or after line start and returns it
// with the index of the first line after the table.
//
// When d never matches, Extract returns an empty Info and start unchanged.
func Extract(ctx context.Context, lines []string, d Detector, start int) (Info, int) {
	log := logging.FromContext(ctx).With(slog.String("detector", d.String()))

	if start < 0 {
		start = 0
	}

	var info Info
	size := 0
	rowStart := len(lines)

headers:
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) {
			continue
		}
		if n, ok := d.Match(line); ok {
			size = n
			info.Headers = append(info.Headers, line)
			log.Debug("header line matched", slog.Int("line", i), slog.Int("sniff_size", n))
			continue
		}
		if len(info.Headers) == 0 {
			continue
		}
		if !hasRunPrefix(line, ' ', size) {
			rowStart = i
			break headers
		}
		info.Headers = append(info.Headers, line)
	}

	if len(info.Headers) == 0 {
		log.Warn("table not found", slog.Int("start", start))
		return Info{}, start
	}

	next := len(lines)
	blank := 0

rows:
	for i := rowStart; i < len(lines); i++ {
		line := lines[i]
		if isBlank(line) {
			blank++
			if blank <= 1 {
				continue
			}
			next = i
			break rows
		}
		blank = 0
		if hasRunPrefix(line, '_', size) {
			log.Debug("separator rule closes table", slog.Int("line", i))
			next = i
			break rows
		}
		info.Rows = append(info.Rows, line)
	}

	info.Offsets = ColumnOffsets(info.Headers[0])
	log.Debug("table extracted",
		slog.Int("headers", len(info.Headers)),
		slog.Int("rows", len(info.Rows)),
		slog.Any("offsets", info.Offsets),
		slog.Int("next", next))

	return info, next
}

// ColumnOffsets infers column start positions from a header line.
//
// A column starts at every non-space rune preceded by three or more
// whitespace runes; the first column starts at 0. Labels separated by one or
// two spaces stay in the same column. A blank header has no columns.
func ColumnOffsets(header string) []int {
	if isBlank(header) {
		return nil
	}

	runes := []rune(header)
	offsets := []int{0}
	spaces := 0
	for i, r := range runes {
		if unicode.IsSpace(r) {
			spaces++
			continue
		}
		if spaces >= 3 && i > 0 {
			offsets = append(offsets, i)
		}
		spaces = 0
	}
	return offsets
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// hasRunPrefix reports whether line starts with n copies of r.
func hasRunPrefix(line string, r rune, n int) bool {
	count := 0
	for _, c := range line {
		if count == n {
			return true
		}
		if c != r {
			return false
		}
		count++
	}
	return count >= n
}
