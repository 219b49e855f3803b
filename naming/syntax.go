package naming

import (
	"regexp"
	"sort"
	"strings"
)

var (
	ifPattern     = regexp.MustCompile(`\{\{#if\s+(\w+)\}\}`)
	varPattern    = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	helperPattern = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\s+([^{}]+)\}\}`)
)

// keywords are text/template words that are never variables.
var keywords = map[string]bool{
	"else": true,
	"end":  true,
}

// convertSyntax rewrites the Handlebars-like forms into text/template:
//
//   - {{name}} -> {{.name}}
//   - {{#if x}}...{{/if}} -> {{if .x}}...{{end}}
//   - {{helper a "lit" 3}} -> {{helper .a "lit" 3}}
//
// Only names in helpers are treated as function calls.
func convertSyntax(input string, helpers map[string]bool) string {
	out := ifPattern.ReplaceAllString(input, "{{if .$1}}")
	out = strings.ReplaceAll(out, "{{/if}}", "{{end}}")

	out = varPattern.ReplaceAllStringFunc(out, func(match string) string {
		name := match[2 : len(match)-2]
		if keywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})

	return helperPattern.ReplaceAllStringFunc(out, func(match string) string {
		m := helperPattern.FindStringSubmatch(match)
		if !helpers[m[1]] {
			return match
		}
		return "{{" + m[1] + " " + convertArguments(m[2]) + "}}"
	})
}

// convertArguments prefixes bare identifiers with a dot. Literals, dotted
// expressions and quoted strings are left alone.
func convertArguments(args string) string {
	parts := splitArguments(strings.TrimSpace(args))
	for i, part := range parts {
		if isIdentifier(part) && part != "true" && part != "false" {
			parts[i] = "." + part
		}
	}
	return strings.Join(parts, " ")
}

// splitArguments splits on spaces outside quotes.
func splitArguments(args string) []string {
	var (
		parts   []string
		current strings.Builder
		quote   rune
	)
	for _, ch := range args {
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
			current.WriteRune(ch)
		case quote != 0 && ch == quote:
			quote = 0
			current.WriteRune(ch)
		case quote == 0 && ch == ' ':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		letter := ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		digit := ch >= '0' && ch <= '9'
		if !letter && !(digit && i > 0) {
			return false
		}
	}
	return true
}

// variables lists the variable names a template references, sorted.
func variables(input string, helpers map[string]bool) []string {
	seen := make(map[string]bool)
	for _, m := range varPattern.FindAllStringSubmatch(input, -1) {
		if !keywords[m[1]] {
			seen[m[1]] = true
		}
	}
	for _, m := range ifPattern.FindAllStringSubmatch(input, -1) {
		seen[m[1]] = true
	}
	for _, m := range helperPattern.FindAllStringSubmatch(input, -1) {
		if !helpers[m[1]] {
			continue
		}
		for _, arg := range splitArguments(m[2]) {
			if isIdentifier(arg) && arg != "true" && arg != "false" {
				seen[arg] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
