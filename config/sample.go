package config

import (
	_ "embed"
	"strings"
)

//go:embed sample.yml
var sample string

// Sample returns the bundled sample configuration without its demo marker,
// ready to be saved and edited.
func Sample() string {
	lines := strings.SplitAfter(sample, "\n")
	out := lines[:0:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "demo:") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "")
}
