package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/shipdoc/logging"
)

// SaveLayout prefixes saved attachment names.
const SaveLayout = "20060102150405"

// Saved is an attachment written to disk.
type Saved struct {
	Path     string
	Filename string // name as sent
	Subject  string
	From     string
}

// Save writes the attachments of msgs to dir as <time>_<filename>. A name
// that is already taken, by this call or by an existing file, gets a _2, _3...
// suffix before its extension.
func Save(ctx context.Context, msgs []*Message, dir string, now time.Time) ([]Saved, error) {
	log := logging.FromContext(ctx)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}

	prefix := now.Format(SaveLayout)
	used := make(map[string]bool)
	var saved []Saved
	for _, m := range msgs {
		for _, name := range m.Skipped {
			log.Warn("attachment skipped, extension mismatch",
				slog.String("subject", m.Subject),
				slog.String("file", name))
		}
		for _, a := range m.Attachments {
			path := uniquePath(filepath.Join(dir, prefix+"_"+a.Filename), used)
			if err := os.WriteFile(path, a.Data, 0o644); err != nil {
				return saved, fmt.Errorf("save attachment: %w", err)
			}
			log.Info("attachment saved", slog.String("file", a.Filename), slog.String("path", path))
			saved = append(saved, Saved{Path: path, Filename: a.Filename, Subject: m.Subject, From: m.From})
		}
	}
	return saved, nil
}

func uniquePath(path string, used map[string]bool) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 2; used[candidate] || exists(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
