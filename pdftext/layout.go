package pdftext

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Glyph is a run of text placed on a page. Y grows upwards, as in PDF user
// space.
type Glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

const (
	defaultCharWidth = 5.0
	// blankGap is the line spacing, in multiples of the typical spacing,
	// above which a blank line is emitted.
	blankGap = 1.6
)

// Layout renders glyphs as fixed-width lines. Each glyph is placed at the
// column its x position maps to, using the page's typical character width,
// and vertical gaps wider than the usual line spacing become blank lines.
// Overlapping glyphs are pushed right so text is never lost.
func Layout(glyphs []Glyph) []string {
	if len(glyphs) == 0 {
		return nil
	}

	gs := make([]Glyph, len(glyphs))
	copy(gs, glyphs)
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Y != gs[j].Y {
			return gs[i].Y > gs[j].Y
		}
		return gs[i].X < gs[j].X
	})

	cw := charWidth(gs)
	minX := gs[0].X
	for _, g := range gs {
		minX = math.Min(minX, g.X)
	}

	rows := groupRows(gs)
	spacing := lineSpacing(rows)

	var lines []string
	for i, row := range rows {
		if i > 0 && spacing > 0 {
			gap := rows[i-1][0].Y - row[0].Y
			for n := int(math.Round(gap/spacing)) - 1; n > 0 && gap > blankGap*spacing; n-- {
				lines = append(lines, "")
			}
		}
		lines = append(lines, renderRow(row, minX, cw))
	}
	return lines
}

// groupRows splits y-sorted glyphs into rows. A glyph joins the current row
// when its baseline is within half a font size of the row's first glyph.
func groupRows(gs []Glyph) [][]Glyph {
	var rows [][]Glyph
	for _, g := range gs {
		if n := len(rows); n > 0 {
			first := rows[n-1][0]
			tol := math.Max(first.FontSize, g.FontSize) / 2
			if tol == 0 {
				tol = 2
			}
			if math.Abs(first.Y-g.Y) <= tol {
				rows[n-1] = append(rows[n-1], g)
				continue
			}
		}
		rows = append(rows, []Glyph{g})
	}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

func renderRow(row []Glyph, minX, cw float64) string {
	var (
		buf []rune
		end float64
	)
	for _, g := range row {
		s := norm.NFC.String(g.S)
		if s == "" {
			continue
		}
		col := int(math.Round((g.X - minX) / cw))
		if col < len(buf) {
			col = len(buf)
			// a visible gap to the previous glyph keeps at least one space
			if col > 0 && buf[col-1] != ' ' && g.X-end > cw/2 {
				col++
			}
		}
		for len(buf) < col {
			buf = append(buf, ' ')
		}
		buf = append(buf, []rune(s)...)
		end = g.X + g.W
	}
	return strings.TrimRight(string(buf), " ")
}

// charWidth is the median advance per character of the non-blank glyphs.
func charWidth(gs []Glyph) float64 {
	var widths []float64
	for _, g := range gs {
		n := utf8.RuneCountInString(strings.TrimSpace(g.S))
		if n == 0 || g.W <= 0 {
			continue
		}
		widths = append(widths, g.W/float64(utf8.RuneCountInString(g.S)))
	}
	if len(widths) == 0 {
		return defaultCharWidth
	}
	sort.Float64s(widths)
	return widths[len(widths)/2]
}

// lineSpacing is the smallest common distance between consecutive rows,
// taken as the lower quartile of the gaps.
func lineSpacing(rows [][]Glyph) float64 {
	if len(rows) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		gaps = append(gaps, rows[i-1][0].Y-rows[i][0].Y)
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/4]
}
