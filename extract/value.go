package extract

import "strings"

// Value is the outcome of an extraction.
// The zero Value is NotFound.
type Value struct {
	s  string
	ok bool
}

// Found returns a Value holding s.
func Found(s string) Value {
	return Value{s: s, ok: true}
}

// NotFound returns the absent Value.
func NotFound() Value {
	return Value{}
}

// Get returns the held string and whether one was found.
func (v Value) Get() (string, bool) {
	return v.s, v.ok
}

// OK reports whether a value was found.
func (v Value) OK() bool {
	return v.ok
}

// OrEmpty returns the held string, or "" when nothing was found.
func (v Value) OrEmpty() string {
	return v.s
}

// Or returns the held string, or def when nothing was found.
func (v Value) Or(def string) string {
	if !v.ok {
		return def
	}
	return v.s
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.ok {
		return "<not found>"
	}
	return v.s
}

// Part splits s on sep and returns the trimmed part at index i.
// It returns NotFound when s has fewer parts.
func Part(s, sep string, i int) Value {
	if i < 0 {
		return NotFound()
	}
	parts := strings.Split(s, sep)
	if i >= len(parts) {
		return NotFound()
	}
	return Found(strings.TrimSpace(parts[i]))
}

// Rune returns the i-th character of s, or NotFound when s is shorter.
func Rune(s string, i int) Value {
	if i < 0 {
		return NotFound()
	}
	runes := []rune(s)
	if i >= len(runes) {
		return NotFound()
	}
	return Found(string(runes[i]))
}
