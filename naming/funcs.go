package naming

import (
	"strings"
	"text/template"
	"time"
	"unicode"
)

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"replace":  strings.ReplaceAll,
		"truncate": truncate,
		"default":  defaultValue,
		"date":     date,
		"sanitize": Sanitize,
	}
}

// truncate keeps at most n characters of s.
func truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// defaultValue returns def if val is nil or an empty string.
func defaultValue(val, def any) any {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	return val
}

func date(t time.Time, layout string) string {
	return t.Format(layout)
}

// Sanitize replaces characters that are unsafe in file names with '_' and
// trims surrounding spaces and dots. Non-ASCII letters are kept.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, " .")
}
