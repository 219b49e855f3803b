package parser

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/randalmurphal/shipdoc/logging"
)

// Factory creates a Parser. Each parser package registers its own.
type Factory func() Parser

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a parser factory to the registry.
// Panics if a parser with the same name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("parser %q already registered", name))
	}
	registry[name] = factory
}

// Resolve returns a new Parser for name. Unknown names are logged with the
// list of available parsers and reported through ok; Resolve never panics.
func Resolve(ctx context.Context, name string) (Parser, bool) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		logging.FromContext(ctx).Warn("parser not found",
			slog.String("parser", name),
			slog.Any("available", Available()))
		return nil, false
	}
	return factory(), true
}

// New is Resolve for callers that prefer an error.
// Returns ErrParserNotFound if the parser is not registered.
func New(ctx context.Context, name string) (Parser, error) {
	p, ok := Resolve(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParserNotFound, name)
	}
	return p, nil
}

// Available returns the registered parser names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a parser is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[name]
	return ok
}

// Unregister removes a parser from the registry.
// This is primarily useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, name)
}

// ClearRegistry removes all registered parsers.
// This is primarily useful for testing.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = make(map[string]Factory)
}
