package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// word spreads s over one glyph per character, 5 units wide, like the
// content streams of most generated PDFs.
func word(x, y float64, s string) []Glyph {
	var gs []Glyph
	for _, r := range s {
		gs = append(gs, Glyph{X: x, Y: y, W: 5, FontSize: 10, S: string(r)})
		x += 5
	}
	return gs
}

func page(parts ...[]Glyph) []Glyph {
	var gs []Glyph
	for _, p := range parts {
		gs = append(gs, p...)
	}
	return gs
}

func TestLayout_Empty(t *testing.T) {
	assert.Nil(t, Layout(nil))
}

func TestLayout_ColumnsAligned(t *testing.T) {
	gs := page(
		word(50, 700, "Item"), word(85, 700, "Qty"),
		word(50, 688, "1"), word(85, 688, "25"),
	)

	assert.Equal(t, []string{
		"Item   Qty",
		"1      25",
	}, Layout(gs))
}

func TestLayout_OrderIndependent(t *testing.T) {
	gs := page(word(85, 688, "25"), word(50, 700, "Item"), word(50, 688, "1"), word(85, 700, "Qty"))

	assert.Equal(t, []string{"Item   Qty", "1      25"}, Layout(gs))
}

func TestLayout_BlankLineForWideGap(t *testing.T) {
	gs := page(
		word(50, 700, "A"),
		word(50, 688, "B"),
		word(50, 676, "C"),
		word(50, 652, "D"),
	)

	assert.Equal(t, []string{"A", "B", "C", "", "D"}, Layout(gs))
}

func TestLayout_SameRowTolerance(t *testing.T) {
	gs := page(word(50, 700, "Lot"), word(85, 698, "No"))

	assert.Equal(t, []string{"Lot    No"}, Layout(gs))
}

func TestLayout_OverlapPushedRight(t *testing.T) {
	gs := []Glyph{
		{X: 0, Y: 10, W: 30, FontSize: 10, S: "ABCDEF"},
		{X: 20, Y: 10, W: 5, FontSize: 10, S: "X"},
		{X: 40, Y: 10, W: 5, FontSize: 10, S: "Y"},
	}

	assert.Equal(t, []string{"ABCDEFX Y"}, Layout(gs))
}

func TestLayout_NormalizesToNFC(t *testing.T) {
	gs := []Glyph{{X: 0, Y: 10, W: 5, FontSize: 10, S: "e\u0301"}}

	assert.Equal(t, []string{"\u00e9"}, Layout(gs))
}

func TestCharWidth(t *testing.T) {
	assert.Equal(t, defaultCharWidth, charWidth([]Glyph{{S: " "}}))
	assert.Equal(t, 6.0, charWidth([]Glyph{{W: 12, S: "ab"}, {W: 6, S: "c"}, {W: 30, S: "abc"}}))
}
