// Package config loads and validates shipdoc configuration.
//
// A configuration file is YAML or TOML, chosen by extension. Values in the
// file are applied over DefaultConfig, and SHIPDOC_* environment variables
// are applied over the file:
//
//	cfg, err := config.Load("shipdoc.yml")
//	if err != nil {
//	    return err
//	}
//	cfg.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/shipdoc/logging"
)

// ErrDemoConfig indicates the sample configuration was used as-is.
var ErrDemoConfig = errors.New("sample configuration cannot be used for real work")

// Config is the complete shipdoc configuration.
type Config struct {
	// Demo marks the bundled sample. A demo config is refused by Validate.
	Demo bool `json:"demo,omitempty" yaml:"demo,omitempty" toml:"demo,omitempty"`

	IMAP         IMAPConfig       `json:"imap" yaml:"imap" toml:"imap"`
	Attachments  AttachmentConfig `json:"attachments" yaml:"attachments" toml:"attachments"`
	ParseResults ParseConfig      `json:"parse_results" yaml:"parse_results" toml:"parse_results"`
	UploadServer UploadConfig     `json:"upload_server" yaml:"upload_server" toml:"upload_server"`
	Log          LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// IMAPConfig selects the mailbox and the messages to fetch.
type IMAPConfig struct {
	Host     string `json:"host" yaml:"host" toml:"host"`
	Port     int    `json:"port" yaml:"port" toml:"port"`
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`

	// Mailbox to search. Default "INBOX".
	Mailbox string `json:"mailbox" yaml:"mailbox" toml:"mailbox"`

	// Sender restricts the search to messages from this address.
	Sender string `json:"sender" yaml:"sender" toml:"sender"`

	// UnseenOnly searches unseen messages and marks fetched ones seen.
	UnseenOnly bool `json:"unseen_only" yaml:"unseen_only" toml:"unseen_only"`

	// TLS connects with implicit TLS. Default true.
	TLS bool `json:"tls" yaml:"tls" toml:"tls"`

	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
}

// AttachmentConfig controls where attachments are saved.
type AttachmentConfig struct {
	SavePath string `json:"save_path" yaml:"save_path" toml:"save_path"`

	// FileExt is the attachment extension to keep, e.g. ".pdf".
	FileExt string `json:"file_ext" yaml:"file_ext" toml:"file_ext"`
}

// ParseConfig controls parsing and spreadsheet output.
type ParseConfig struct {
	// Output is the root directory; files go to <output>/<parser>/.
	Output string `json:"output" yaml:"output" toml:"output"`

	// FilenameTemplate renders the spreadsheet file name.
	// Variables: {{timestamp}}, {{stem}}, {{parser}}, {{subject}}.
	FilenameTemplate string `json:"filename_template" yaml:"filename_template" toml:"filename_template"`

	// Workers bounds the number of documents parsed at once.
	Workers int `json:"workers" yaml:"workers" toml:"workers"`

	// RulesDir holds YAML rule parsers loaded at startup. Optional.
	RulesDir string `json:"rules_dir,omitempty" yaml:"rules_dir,omitempty" toml:"rules_dir,omitempty"`
}

// UploadConfig is the FTP server that receives the spreadsheets.
// An empty Host disables uploading.
type UploadConfig struct {
	Host     string `json:"host" yaml:"host" toml:"host"`
	Port     int    `json:"port" yaml:"port" toml:"port"`
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`

	// Encoding of remote file names, e.g. "utf-8" or "gbk".
	Encoding string `json:"encoding" yaml:"encoding" toml:"encoding"`

	// Dir is the remote directory. Empty means the login directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`

	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Output string `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Format string `json:"format" yaml:"format" toml:"format" jsonschema:"enum=text,enum=json"`
}

// Options converts the log section to logging options.
func (l LogConfig) Options() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format, Output: l.Output}
}

// DefaultConfig returns a Config with sensible defaults.
// Server addresses and credentials must still be set before use.
func DefaultConfig() Config {
	return Config{
		IMAP: IMAPConfig{
			Port:       993,
			Mailbox:    "INBOX",
			UnseenOnly: true,
			TLS:        true,
			Timeout:    time.Minute,
		},
		Attachments: AttachmentConfig{
			SavePath: "attachments",
			FileExt:  ".pdf",
		},
		ParseResults: ParseConfig{
			Output:           "output",
			FilenameTemplate: "{{timestamp}}_{{stem}}.xlsx",
			Workers:          4,
		},
		UploadServer: UploadConfig{
			Port:     21,
			Encoding: "utf-8",
			Timeout:  30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML (.yml, .yaml), TOML (.toml) or JSON (.json) file over
// DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("read config: unsupported extension %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the SHIPDOC_ prefix and take precedence over
// existing values. Malformed numbers and durations are ignored.
//
// Supported variables:
//   - SHIPDOC_IMAP_HOST, SHIPDOC_IMAP_PORT, SHIPDOC_IMAP_USERNAME,
//     SHIPDOC_IMAP_PASSWORD, SHIPDOC_IMAP_SENDER
//   - SHIPDOC_SAVE_PATH: attachment directory
//   - SHIPDOC_OUTPUT, SHIPDOC_WORKERS, SHIPDOC_RULES_DIR
//   - SHIPDOC_UPLOAD_HOST, SHIPDOC_UPLOAD_PORT, SHIPDOC_UPLOAD_USERNAME,
//     SHIPDOC_UPLOAD_PASSWORD, SHIPDOC_UPLOAD_TIMEOUT (e.g. "30s")
//   - SHIPDOC_LOG_LEVEL, SHIPDOC_LOG_FORMAT, SHIPDOC_LOG_OUTPUT
func (c *Config) LoadFromEnv() {
	setString(&c.IMAP.Host, "SHIPDOC_IMAP_HOST")
	setInt(&c.IMAP.Port, "SHIPDOC_IMAP_PORT")
	setString(&c.IMAP.Username, "SHIPDOC_IMAP_USERNAME")
	setString(&c.IMAP.Password, "SHIPDOC_IMAP_PASSWORD")
	setString(&c.IMAP.Sender, "SHIPDOC_IMAP_SENDER")

	setString(&c.Attachments.SavePath, "SHIPDOC_SAVE_PATH")

	setString(&c.ParseResults.Output, "SHIPDOC_OUTPUT")
	setInt(&c.ParseResults.Workers, "SHIPDOC_WORKERS")
	setString(&c.ParseResults.RulesDir, "SHIPDOC_RULES_DIR")

	setString(&c.UploadServer.Host, "SHIPDOC_UPLOAD_HOST")
	setInt(&c.UploadServer.Port, "SHIPDOC_UPLOAD_PORT")
	setString(&c.UploadServer.Username, "SHIPDOC_UPLOAD_USERNAME")
	setString(&c.UploadServer.Password, "SHIPDOC_UPLOAD_PASSWORD")
	if v := os.Getenv("SHIPDOC_UPLOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.UploadServer.Timeout = d
		}
	}

	setString(&c.Log.Level, "SHIPDOC_LOG_LEVEL")
	setString(&c.Log.Format, "SHIPDOC_LOG_FORMAT")
	setString(&c.Log.Output, "SHIPDOC_LOG_OUTPUT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the settings every command needs. Mail and upload
// settings are checked by ValidateIMAP and ValidateUpload.
func (c *Config) Validate() error {
	if c.Demo {
		return ErrDemoConfig
	}
	if c.Attachments.FileExt == "" {
		return fmt.Errorf("attachments.file_ext is required")
	}
	if c.ParseResults.Output == "" {
		return fmt.Errorf("parse_results.output is required")
	}
	if c.ParseResults.Workers < 1 {
		return fmt.Errorf("parse_results.workers must be >= 1, got %d", c.ParseResults.Workers)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.UploadServer.Host != "" {
		return c.ValidateUpload()
	}
	return nil
}

// ValidateIMAP checks the mailbox settings.
func (c *Config) ValidateIMAP() error {
	if c.IMAP.Host == "" {
		return fmt.Errorf("imap.host is required")
	}
	if err := checkPort("imap.port", c.IMAP.Port); err != nil {
		return err
	}
	if c.IMAP.Username == "" {
		return fmt.Errorf("imap.username is required")
	}
	if c.IMAP.Timeout < 0 {
		return fmt.Errorf("imap.timeout must be >= 0, got %v", c.IMAP.Timeout)
	}
	return nil
}

// ValidateUpload checks the FTP settings.
func (c *Config) ValidateUpload() error {
	if c.UploadServer.Host == "" {
		return fmt.Errorf("upload_server.host is required")
	}
	if err := checkPort("upload_server.port", c.UploadServer.Port); err != nil {
		return err
	}
	if c.UploadServer.Timeout < 0 {
		return fmt.Errorf("upload_server.timeout must be >= 0, got %v", c.UploadServer.Timeout)
	}
	return nil
}

func checkPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", name, port)
	}
	return nil
}

// WithOutput returns a copy of the config writing spreadsheets under dir.
func (c Config) WithOutput(dir string) Config {
	c.ParseResults.Output = dir
	return c
}

// WithWorkers returns a copy of the config with the given worker count.
func (c Config) WithWorkers(n int) Config {
	c.ParseResults.Workers = n
	return c
}

// UploadEnabled reports whether an upload server is configured.
func (c Config) UploadEnabled() bool {
	return c.UploadServer.Host != ""
}
