// Package packinglist parses supplier packing lists into one record per
// wafer.
//
// The parser registers itself under the name "PackageList". Import the
// package for its side effect to make it available through the registry:
//
//	import _ "github.com/randalmurphal/shipdoc/packinglist"
//
//	p, ok := parser.Resolve(ctx, "PackageList")
//
// Document-level values (order number, ship date, total quantity) are taken
// from the whole text. Device and lot come from the first row of the item
// table, and the wafer list from the first "Wafer ID:" line. Every wafer
// becomes one record that repeats the document-level values.
package packinglist
