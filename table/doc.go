// Package table finds and parses fixed-width tables in layout-preserving text.
//
// The input is the text of a rendered document split into lines. A Detector
// marks the first header line of a table; Extract collects the header block
// and the data rows that follow it, and Format slices both at the column
// offsets inferred from the first header line.
//
// Core types:
//   - Detector: recognizes a header line and reports the sniff size
//   - Info: raw header and row lines plus column offsets
//   - Formatted: column names and per-row field values
//
// Example usage:
//
//	lines := strings.Split(pageText, "\n")
//	info, next := table.Extract(ctx, lines, table.MustPattern(`^Item`), 0)
//	t := table.Format(ctx, info)
//	for _, row := range t.Rows {
//	    fmt.Println(row)
//	}
//
// A detector that never matches is not an error. Extract returns an empty Info
// and the unchanged start line, and Format turns that into a table with no
// rows. Several tables can be read from one document by running different
// detectors from the returned line index.
//
// Offsets and slicing work on runes, so a column position counts characters,
// not bytes.
package table
