package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Scalar extracts a single Value from document text.
type Scalar interface {
	Extract(text string) Value
}

// ScalarFunc adapts a function to the Scalar interface.
type ScalarFunc func(text string) Value

// Extract implements Scalar.
func (f ScalarFunc) Extract(text string) Value {
	return f(text)
}

// Literal returns a Scalar that always finds s, whatever the text.
func Literal(s string) Scalar {
	return ScalarFunc(func(string) Value { return Found(s) })
}

// Transform post-processes a captured string.
type Transform func(string) string

// TrimPrefix returns a Transform removing prefix and surrounding space.
func TrimPrefix(prefix string) Transform {
	return func(s string) string {
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), prefix))
	}
}

// Remove returns a Transform deleting every occurrence of old.
func Remove(old string) Transform {
	return func(s string) string {
		return strings.ReplaceAll(s, old, "")
	}
}

// Capture extracts one capture group of the first match of a regular
// expression. The captured text is trimmed before transforms run.
type Capture struct {
	re    *regexp.Regexp
	group int
	post  []Transform
}

// NewCapture compiles expr and returns a Capture for the given group.
// Group 0 is the whole match.
func NewCapture(expr string, group int, post ...Transform) (*Capture, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile capture: %w", err)
	}
	if group < 0 || group > re.NumSubexp() {
		return nil, fmt.Errorf("compile capture: group %d out of range for %q", group, expr)
	}
	return &Capture{re: re, group: group, post: post}, nil
}

// MustCapture is like NewCapture but panics on error.
func MustCapture(expr string, group int, post ...Transform) *Capture {
	c, err := NewCapture(expr, group, post...)
	if err != nil {
		panic(err)
	}
	return c
}

// Extract implements Scalar. An unmatched expression or an unmatched
// optional group yields NotFound.
func (c *Capture) Extract(text string) Value {
	m := c.re.FindStringSubmatchIndex(text)
	if m == nil || m[2*c.group] < 0 {
		return NotFound()
	}
	s := strings.TrimSpace(text[m[2*c.group]:m[2*c.group+1]])
	for _, fn := range c.post {
		s = fn(s)
	}
	return Found(s)
}

// String returns the expression source.
func (c *Capture) String() string {
	return c.re.String()
}

// Repeating extracts a list of values from one match: the captured text is
// split on a separator and every part trimmed. Empty parts are dropped.
type Repeating struct {
	capture *Capture
	sep     string
}

// NewRepeating compiles expr and returns a Repeating for the given group.
func NewRepeating(expr string, group int, sep string, post ...Transform) (*Repeating, error) {
	c, err := NewCapture(expr, group, post...)
	if err != nil {
		return nil, err
	}
	if sep == "" {
		return nil, fmt.Errorf("compile repeating: empty separator for %q", expr)
	}
	return &Repeating{capture: c, sep: sep}, nil
}

// MustRepeating is like NewRepeating but panics on error.
func MustRepeating(expr string, group int, sep string, post ...Transform) *Repeating {
	r, err := NewRepeating(expr, group, sep, post...)
	if err != nil {
		panic(err)
	}
	return r
}

// Extract returns the values in match order, or nil when nothing matched.
func (r *Repeating) Extract(text string) []string {
	v, ok := r.capture.Extract(text).Get()
	if !ok {
		return nil
	}
	parts := strings.Split(v, r.sep)
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
