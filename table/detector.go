package table

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Detector recognizes the first line of a table header.
// Match reports whether line opens a header and, if so, the sniff size: the
// rune length of the matched text. Header continuation lines must be indented
// by at least that many spaces, and a rule of that many underscores closes the
// table body.
type Detector interface {
	Match(line string) (size int, ok bool)
	String() string
}

type prefixDetector string

// Prefix returns a Detector matching lines that start with s.
// An empty prefix never matches.
func Prefix(s string) Detector {
	return prefixDetector(s)
}

func (p prefixDetector) Match(line string) (int, bool) {
	if p == "" || !strings.HasPrefix(line, string(p)) {
		return 0, false
	}
	return utf8.RuneCountInString(string(p)), true
}

func (p prefixDetector) String() string {
	return fmt.Sprintf("prefix(%q)", string(p))
}

type patternDetector struct {
	re *regexp.Regexp
}

// Pattern returns a Detector matching lines where re matches at the first
// rune. A zero-length match is treated as no match.
func Pattern(re *regexp.Regexp) Detector {
	return patternDetector{re: re}
}

// MustPattern compiles expr and returns a Pattern detector.
// It panics if expr does not compile.
func MustPattern(expr string) Detector {
	return Pattern(regexp.MustCompile(expr))
}

func (p patternDetector) Match(line string) (int, bool) {
	if p.re == nil {
		return 0, false
	}
	loc := p.re.FindStringIndex(line)
	if loc == nil || loc[0] != 0 || loc[1] == 0 {
		return 0, false
	}
	return utf8.RuneCountInString(line[:loc[1]]), true
}

func (p patternDetector) String() string {
	if p.re == nil {
		return "pattern(<nil>)"
	}
	return fmt.Sprintf("pattern(%q)", p.re.String())
}
