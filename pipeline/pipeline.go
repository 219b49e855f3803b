package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/naming"
	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/pdftext"
	"github.com/randalmurphal/shipdoc/record"
	"github.com/randalmurphal/shipdoc/sheet"
	"github.com/randalmurphal/shipdoc/upload"
)

// TextFunc extracts the text of a document.
type TextFunc func(ctx context.Context, path string) (string, error)

// Pipeline parses documents into workbooks. It is safe for concurrent use.
type Pipeline struct {
	output  string
	workers int
	namer   *naming.Namer
	text    TextFunc
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTextFunc replaces PDF text extraction.
func WithTextFunc(fn TextFunc) Option {
	return func(p *Pipeline) { p.text = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline from the parse_results section of cfg.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	namer, err := naming.New(cfg.ParseResults.FilenameTemplate, ".xlsx")
	if err != nil {
		return nil, fmt.Errorf("filename_template: %w", err)
	}
	p := &Pipeline{
		output:  cfg.ParseResults.Output,
		workers: max(1, cfg.ParseResults.Workers),
		namer:   namer,
		text:    pdftext.File,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the outcome for one document.
type Result struct {
	Document Document
	Parser   string
	Records  int
	Output   string // empty when nothing was written
	Err      error
}

// Summary is the outcome of a run.
type Summary struct {
	Results  []Result
	Uploaded []string
}

// Outputs returns the written workbooks in document order.
func (s Summary) Outputs() []string {
	var out []string
	for _, r := range s.Results {
		if r.Output != "" {
			out = append(out, r.Output)
		}
	}
	return out
}

// Failed returns the results that ended in an error.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Run collects documents from src, parses them and uploads the workbooks
// with up. A nil up skips uploading.
func (p *Pipeline) Run(ctx context.Context, src Source, up upload.Uploader) (Summary, error) {
	log := logging.FromContext(ctx)

	docs, err := src.Documents(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(docs) == 0 {
		log.Warn("no attachments to process")
		return Summary{}, nil
	}

	summary := Summary{Results: p.Parse(ctx, docs)}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	outputs := summary.Outputs()
	switch {
	case len(outputs) == 0:
		log.Warn("no files to upload")
	case up == nil:
		log.Info("upload disabled", slog.Int("files", len(outputs)))
	default:
		if err := up.Upload(ctx, outputs); err != nil {
			return summary, err
		}
		summary.Uploaded = outputs
	}
	return summary, nil
}

// Parse processes docs with at most the configured number of workers. The
// same file listed twice is parsed once. Results follow the order of docs.
func (p *Pipeline) Parse(ctx context.Context, docs []Document) []Result {
	docs = dedupe(docs)
	results := make([]Result, len(docs))
	now := p.now()
	claimed := &claims{paths: make(map[string]bool)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = p.process(gctx, doc, now, claimed)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) process(ctx context.Context, doc Document, now time.Time, claimed *claims) Result {
	res := Result{Document: doc}
	log := logging.FromContext(ctx).With(
		slog.String("subject", doc.Subject),
		slog.String("file", doc.Filename))

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	name, ok := ParserName(doc.Subject)
	if !ok {
		log.Warn("no parser name in subject")
		res.Err = fmt.Errorf("%w in subject %q", ErrNoParserName, doc.Subject)
		return res
	}
	res.Parser = name

	records, prs, err := p.ParseFile(ctx, doc.Path, name)
	if err != nil {
		log.Error("parse failed", slog.Any("error", err))
		res.Err = err
		return res
	}
	res.Records = len(records)
	if len(records) == 0 {
		log.Warn("parse result is empty", slog.String("parser", name))
		return res
	}

	path, err := p.namer.Path(p.output, naming.NewVars(now, doc.Filename, prs.Name(), doc.Subject))
	if err != nil {
		res.Err = err
		return res
	}
	path = claimed.claim(path)

	t := sheet.FromRecords(prs.Name(), prs.Fields().External(), records)
	if err := sheet.Write(path, t); err != nil {
		log.Error("write workbook failed", slog.Any("error", err))
		res.Err = err
		return res
	}
	res.Output = path
	log.Info("workbook written", slog.String("output", path), slog.Int("records", len(records)))
	return res
}

// ParseFile extracts the text of path and runs the named parser on it. Text
// that is only whitespace fails with parser.ErrEmpty.
func (p *Pipeline) ParseFile(ctx context.Context, path, parserName string) ([]record.Record, parser.Parser, error) {
	prs, err := parser.New(ctx, parserName)
	if err != nil {
		return nil, nil, err
	}
	text, err := p.text(ctx, path)
	if err != nil {
		return nil, prs, parser.NewError(prs.Name(), "extract text", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, prs, parser.NewError(prs.Name(), "extract text", parser.ErrEmpty)
	}
	records, err := prs.Run(ctx, text)
	if err != nil {
		return nil, prs, err
	}
	return records, prs, nil
}

func dedupe(docs []Document) []Document {
	seen := make(map[string]bool, len(docs))
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		key := filepath.Clean(d.Path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// claims hands out unique output paths within a run: a second document that
// renders the same name gets a numeric suffix.
type claims struct {
	mu    sync.Mutex
	paths map[string]bool
}

func (c *claims) claim(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := path
	ext := filepath.Ext(path)
	for n := 2; c.paths[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), n, ext)
	}
	c.paths[candidate] = true
	return candidate
}
