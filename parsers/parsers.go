// Package parsers registers all built-in document parsers.
// Import this package to make them available via parser.Resolve():
//
//	import _ "github.com/randalmurphal/shipdoc/parsers"
//
// Parsers defined in rule files are registered at startup by rules.LoadDir.
package parsers

import (
	_ "github.com/randalmurphal/shipdoc/packinglist"
)
