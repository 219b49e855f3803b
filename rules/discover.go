package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/parser"
)

// Load reads and parses a rule file.
func Load(path string) (*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

// Discover finds all rule files (.yml, .yaml) in dir.
// A missing directory yields no rules. Files that fail to parse are logged
// and skipped.
func Discover(ctx context.Context, dir string) ([]*Rule, error) {
	if !dirExists(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rules directory: %w", err)
	}

	log := logging.FromContext(ctx)
	var rules []*Rule
	for _, entry := range entries {
		if entry.IsDir() || !isRuleFile(entry.Name()) {
			continue
		}

		r, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn("skipping rule file", slog.String("file", entry.Name()), slog.Any("error", err))
			continue
		}
		rules = append(rules, r)
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name < rules[j].Name
	})

	return rules, nil
}

// LoadDir compiles every rule in dir and registers it with the parser
// registry. It returns the registered names. A rule whose name is already
// registered is an error, as is any rule that fails to compile.
func LoadDir(ctx context.Context, dir string) ([]string, error) {
	rules, err := Discover(ctx, dir)
	if err != nil {
		return nil, err
	}

	compiled := make([]*Parser, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		p, err := Compile(r)
		if err != nil {
			return nil, parser.NewError(r.Name, "load "+r.Path, err)
		}
		if seen[p.Name()] || parser.IsRegistered(p.Name()) {
			return nil, parser.NewError(r.Name, "load "+r.Path, fmt.Errorf("%w: name already registered", ErrInvalidRule))
		}
		seen[p.Name()] = true
		compiled = append(compiled, p)
	}

	names := make([]string, 0, len(compiled))
	for _, p := range compiled {
		parser.Register(p.Name(), func() parser.Parser { return p })
		names = append(names, p.Name())
	}

	logging.FromContext(ctx).Info("rule parsers loaded",
		slog.String("dir", dir),
		slog.Any("parsers", names))
	return names, nil
}

func isRuleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
