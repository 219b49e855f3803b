package packinglist

import "github.com/randalmurphal/shipdoc/parser"

func init() {
	parser.Register(Name, func() parser.Parser { return New() })
}
