package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/mailbox"
)

// ErrNoParserName indicates a subject or file name without a "[Name]" tag.
var ErrNoParserName = errors.New("no parser name")

var parserTag = regexp.MustCompile(`^\[\s*([^\[\]]+?)\s*\]`)

// ParserName returns the parser name tagged at the start of s, as in
// "[PackageList] May shipment".
func ParserName(s string) (string, bool) {
	m := parserTag.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Document is one PDF to parse.
type Document struct {
	Path     string
	Filename string // original attachment or file name
	Subject  string // carries the parser tag
}

// Source produces the documents of a run.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// MailSource fetches documents from the configured mailbox and saves the
// attachments under Attachments.SavePath.
type MailSource struct {
	Config config.Config
	Now    func() time.Time
}

// Documents implements Source.
func (s MailSource) Documents(ctx context.Context) ([]Document, error) {
	msgs, err := mailbox.Fetch(ctx, s.Config.IMAP, s.Config.Attachments.FileExt)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		logging.FromContext(ctx).Warn("no mail to process")
		return nil, nil
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	saved, err := mailbox.Save(ctx, msgs, s.Config.Attachments.SavePath, now())
	if err != nil {
		return nil, err
	}
	return FromSaved(saved), nil
}

// FromSaved converts saved attachments to documents.
func FromSaved(saved []mailbox.Saved) []Document {
	docs := make([]Document, 0, len(saved))
	for _, s := range saved {
		docs = append(docs, Document{Path: s.Path, Filename: s.Filename, Subject: s.Subject})
	}
	return docs
}

// DirSource reads documents from a local directory. File names carry the
// parser tag; files without one are skipped.
type DirSource struct {
	Dir string
	Ext string
}

// Documents implements Source.
func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	log := logging.FromContext(ctx)

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf directory: %w", err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() || !mailbox.MatchExt(e.Name(), s.Ext) {
			continue
		}
		doc, err := LocalDocument(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			log.Warn("skipping file", slog.String("file", e.Name()), slog.Any("error", err))
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// LocalDocument builds a Document for a local file whose name carries the
// parser tag.
func LocalDocument(path string) (Document, error) {
	name := filepath.Base(path)
	m := parserTag.FindString(name)
	if m == "" {
		return Document{}, fmt.Errorf("%w in file name %q", ErrNoParserName, name)
	}
	return Document{Path: path, Filename: name, Subject: m + " from local path"}, nil
}
