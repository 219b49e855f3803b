// Package shipdoc turns shipment documents into spreadsheet rows.
//
// Suppliers mail packing lists as PDFs. shipdoc renders each PDF to
// layout-preserving text, finds the fixed-width tables in it, and maps table
// cells and labelled values onto named fields. A document yields one record
// per wafer (or other repeating key); records are written to an xlsx workbook
// and optionally uploaded over FTP.
//
// Subpackages, leaves first:
//
//   - table: fixed-width table detection and slicing
//   - extract: single-value and repeating regex extraction
//   - record: output records and field name mapping
//   - parser: the Parser interface and the name-keyed registry
//   - packinglist: the built-in "PackageList" parser
//   - rules: parsers defined in YAML files
//   - parsers: blank-imports every built-in parser
//   - pdftext: PDF to layout text
//   - mailbox: IMAP retrieval and attachment saving
//   - sheet: xlsx output
//   - upload: FTP transfer
//   - naming: output file name templates
//   - pipeline: ties sources, parsers, workbooks and upload together
//   - watch: directory watching for new documents
//   - preview: terminal tables
//   - config, logging: ambient setup
//
// # Quick Start
//
// Parsing text that is already extracted:
//
//	import _ "github.com/randalmurphal/shipdoc/parsers"
//
//	p, err := parser.New(ctx, "PackageList")
//	if err != nil {
//	    return err
//	}
//	records, err := p.Run(ctx, text)
//
// The command line tool lives in cmd/shipdoc.
package shipdoc
