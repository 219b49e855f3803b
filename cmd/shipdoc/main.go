// shipdoc turns shipment document PDFs into spreadsheets.
//
// Usage:
//
//	shipdoc [--config FILE] pipeline
//	shipdoc [--config FILE] parse-attachments --pdf-dir DIR
//	shipdoc [--config FILE] parse [--parser NAME] FILE
//	shipdoc [--config FILE] watch DIR
//	shipdoc [--config FILE] parsers
//	shipdoc show-config
//	shipdoc schema
//	shipdoc version
//
// The pipeline command fetches mail from the configured sender, saves the PDF
// attachments and writes one workbook per attachment. The parser is named by
// a "[Name]" prefix in the mail subject, or in the file name for local files.
// Written workbooks are uploaded when upload_server.host is set.
//
// Exit codes: 0 success, 1 failure, 2 usage error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
	_ "github.com/randalmurphal/shipdoc/parsers"
	"github.com/randalmurphal/shipdoc/rules"
)

const defaultConfigFile = "config.yml"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every command receives after global setup.
type env struct {
	cfg    config.Config
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name  string
	usage string
	// setup is false for commands that need no configuration.
	setup bool
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"pipeline", "fetch mail, parse attachments, upload workbooks", true, runPipeline},
	{"parse-attachments", "parse tagged PDFs from a local directory", true, runParseAttachments},
	{"parse", "parse one PDF and print the records", true, runParse},
	{"watch", "parse tagged PDFs as they appear in a directory", true, runWatch},
	{"parsers", "list registered parsers", true, runParsers},
	{"show-config", "print a sample configuration", false, runShowConfig},
	{"schema", "print the configuration JSON Schema", false, runSchema},
	{"version", "print the version", false, runVersion},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shipdoc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file (.yml, .yaml, .toml, .json)")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return 2
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "shipdoc: unknown command %q\n", fs.Arg(0))
		printUsage(stderr, fs)
		return 2
	}

	e := &env{stdout: stdout, stderr: stderr}
	if cmd.setup {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "shipdoc: %v\n", err)
			return 1
		}
		e.cfg = cfg

		base, closer, err := logging.New(withStderr(cfg.Log.Options(), stderr))
		if err != nil {
			fmt.Fprintf(stderr, "shipdoc: %v\n", err)
			return 1
		}
		defer closer.Close()
		log, _ := logging.ForRun(base)
		log = log.With(slog.String("command", cmd.name))
		ctx = logging.WithLogger(ctx, log)

		if dir := cfg.ParseResults.RulesDir; dir != "" {
			if _, err := rules.LoadDir(ctx, dir); err != nil {
				log.Error("load rule parsers", slog.Any("error", err))
				return 1
			}
		}
	}

	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "shipdoc %s: %v\n", cmd.name, err)
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: shipdoc [--config FILE] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-18s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

// loadConfig reads path, or config.yml when path is empty and that file
// exists, or the defaults otherwise. Environment overrides apply last.
func loadConfig(path string) (config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	case fileExists(defaultConfigFile):
		loaded, err := config.Load(defaultConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func withStderr(opts logging.Options, w io.Writer) logging.Options {
	opts.Stderr = w
	return opts
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
