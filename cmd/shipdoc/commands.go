package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/pipeline"
	"github.com/randalmurphal/shipdoc/preview"
	"github.com/randalmurphal/shipdoc/upload"
	"github.com/randalmurphal/shipdoc/watch"
)

// runFlags are shared by the commands that write workbooks.
type runFlags struct {
	output   string
	workers  int
	noUpload bool
}

func (f *runFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.output, "output", "", "override parse_results.output")
	fs.IntVar(&f.workers, "workers", 0, "override parse_results.workers")
	fs.BoolVar(&f.noUpload, "no-upload", false, "skip uploading workbooks")
}

func (f *runFlags) apply(cfg config.Config) config.Config {
	if f.output != "" {
		cfg = cfg.WithOutput(f.output)
	}
	if f.workers > 0 {
		cfg = cfg.WithWorkers(f.workers)
	}
	return cfg
}

func (f *runFlags) uploader(cfg config.Config) (upload.Uploader, error) {
	if f.noUpload || !cfg.UploadEnabled() {
		return nil, nil
	}
	return upload.New(cfg.UploadServer)
}

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("shipdoc "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func runPipeline(ctx context.Context, e *env, args []string) error {
	var rf runFlags
	fs := newFlagSet(e, "pipeline")
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := rf.apply(e.cfg)
	if err := cfg.ValidateIMAP(); err != nil {
		return err
	}
	return runBatch(ctx, e, cfg, &rf, pipeline.MailSource{Config: cfg})
}

func runParseAttachments(ctx context.Context, e *env, args []string) error {
	var rf runFlags
	fs := newFlagSet(e, "parse-attachments")
	dir := fs.String("pdf-dir", "", "directory of PDFs named \"[Parser] ...\"")
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		fmt.Fprintln(e.stderr, "shipdoc parse-attachments: --pdf-dir is required")
		return errUsage
	}

	cfg := rf.apply(e.cfg)
	return runBatch(ctx, e, cfg, &rf, pipeline.DirSource{Dir: *dir, Ext: cfg.Attachments.FileExt})
}

func runBatch(ctx context.Context, e *env, cfg config.Config, rf *runFlags, src pipeline.Source) error {
	up, err := rf.uploader(cfg)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, src, up)
	report(e, summary.Results)
	if err != nil {
		return err
	}
	if n := len(summary.Uploaded); n > 0 {
		fmt.Fprintf(e.stdout, "uploaded %d file(s)\n", n)
	}
	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d %w", len(failed), len(summary.Results), errDocumentsFailed)
	}
	return nil
}

func runParse(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "parse")
	name := fs.String("parser", "", "parser name; defaults to the \"[Parser]\" file name prefix")
	vertical := fs.Bool("vertical", false, "print one table per record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(e.stderr, "usage: shipdoc parse [--parser NAME] FILE")
		return errUsage
	}
	path := fs.Arg(0)

	if *name == "" {
		tag, ok := pipeline.ParserName(filepath.Base(path))
		if !ok {
			return fmt.Errorf("%w in %q; pass --parser", pipeline.ErrNoParserName, filepath.Base(path))
		}
		*name = tag
	}

	p, err := pipeline.New(e.cfg)
	if err != nil {
		return err
	}
	records, prs, err := p.ParseFile(ctx, path, *name)
	if err != nil {
		return err
	}

	opts := preview.Options{}
	if f, ok := e.stdout.(*os.File); ok {
		opts = preview.ForFile(f)
	}
	opts.Vertical = *vertical
	return preview.Records(e.stdout, prs.Name(), prs.Fields().External(), records, opts)
}

func runWatch(ctx context.Context, e *env, args []string) error {
	var rf runFlags
	fs := newFlagSet(e, "watch")
	settle := fs.Duration("settle", 500*time.Millisecond, "time a file must stop growing before it is parsed")
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(e.stderr, "usage: shipdoc watch [flags] DIR")
		return errUsage
	}

	cfg := rf.apply(e.cfg)
	up, err := rf.uploader(cfg)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	log := logging.FromContext(ctx)
	files, err := watch.Dir(ctx, fs.Arg(0), watch.Options{Ext: cfg.Attachments.FileExt, Settle: *settle})
	if err != nil {
		return err
	}
	log.Info("watching", slog.String("dir", fs.Arg(0)))

	for path := range files {
		doc, err := pipeline.LocalDocument(path)
		if err != nil {
			log.Warn("skipping file", slog.String("file", path), slog.Any("error", err))
			continue
		}
		results := p.Parse(ctx, []pipeline.Document{doc})
		report(e, results)

		outputs := pipeline.Summary{Results: results}.Outputs()
		if up == nil || len(outputs) == 0 {
			continue
		}
		if err := up.Upload(ctx, outputs); err != nil {
			log.Error("upload failed", slog.Any("files", outputs), slog.Any("error", err))
		}
	}
	return nil
}

func runParsers(_ context.Context, e *env, _ []string) error {
	for _, name := range parser.Available() {
		fmt.Fprintln(e.stdout, name)
	}
	return nil
}

func runShowConfig(_ context.Context, e *env, _ []string) error {
	_, err := fmt.Fprint(e.stdout, config.Sample())
	return err
}

func runSchema(_ context.Context, e *env, _ []string) error {
	data, err := config.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, string(data))
	return err
}

func runVersion(_ context.Context, e *env, _ []string) error {
	_, err := fmt.Fprintln(e.stdout, "shipdoc", version)
	return err
}

func report(e *env, results []pipeline.Result) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(e.stdout, "FAIL %s: %v\n", r.Document.Filename, r.Err)
		case r.Output == "":
			fmt.Fprintf(e.stdout, "skip %s: no records\n", r.Document.Filename)
		default:
			fmt.Fprintf(e.stdout, "ok   %s -> %s (%d records)\n", r.Document.Filename, r.Output, r.Records)
		}
	}
}

var errDocumentsFailed = errors.New("documents failed")
