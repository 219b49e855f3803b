// Package parser defines the document parser interface and the process-wide
// registry that maps parser names to factories.
//
// Parsers register themselves from init():
//
//	func init() {
//	    parser.Register("PackageList", func() parser.Parser { return New() })
//	}
//
// and callers resolve them by the name carried in a mail subject or file name.
package parser

import (
	"context"

	"github.com/randalmurphal/shipdoc/record"
)

// Parser turns the text of one document into records.
// Implementations hold no mutable state between Run calls.
type Parser interface {
	// Name returns the registry name.
	Name() string

	// Fields returns the ordered field map. The external names are the
	// output columns.
	Fields() record.FieldMap

	// Run extracts records from document text. A document without the
	// expected table yields an empty slice, not an error.
	Run(ctx context.Context, text string) ([]record.Record, error)
}
