// Package upload sends result files to the FTP server.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jlaffaye/ftp"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
)

// Uploader stores local files on a remote server.
type Uploader interface {
	Upload(ctx context.Context, paths []string) error
}

// Client uploads over FTP. A Client opens one connection per Upload call.
type Client struct {
	cfg config.UploadConfig
	enc encoding.Encoding
}

var _ Uploader = (*Client)(nil)

// New returns a Client for cfg. The file name encoding is resolved here so a
// misspelled encoding fails before any mail is fetched.
func New(cfg config.UploadConfig) (*Client, error) {
	c := &Client{cfg: cfg}
	if name := strings.TrimSpace(cfg.Encoding); name != "" && !isUTF8(name) {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("upload encoding %q: %w", name, err)
		}
		c.enc = enc
	}
	return c, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// RemoteName converts a local base name to the server's file name encoding.
func (c *Client) RemoteName(name string) (string, error) {
	if c.enc == nil {
		return name, nil
	}
	s, err := c.enc.NewEncoder().String(name)
	if err != nil {
		return "", fmt.Errorf("encode file name %q: %w", name, err)
	}
	return s, nil
}

// Upload stores every path under the configured remote directory, keeping
// base names. It stops at the first failure.
func (c *Client) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	log := logging.FromContext(ctx).With(slog.String("server", c.cfg.Host))

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			log.Debug("ftp quit", slog.Any("error", err))
		}
	}()

	if err := conn.Login(c.cfg.Username, c.cfg.Password); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}
	if c.cfg.Dir != "" {
		if err := c.changeDir(conn, c.cfg.Dir); err != nil {
			return err
		}
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.store(conn, path); err != nil {
			return err
		}
		log.Info("uploaded", slog.String("file", path))
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (*ftp.ServerConn, error) {
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if c.cfg.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(c.cfg.Timeout))
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("ftp connect %s: %w", addr, err)
	}
	return conn, nil
}

// changeDir enters dir, creating it when it does not exist.
func (c *Client) changeDir(conn *ftp.ServerConn, dir string) error {
	remote, err := c.RemoteName(dir)
	if err != nil {
		return err
	}
	if err := conn.ChangeDir(remote); err == nil {
		return nil
	}
	if err := conn.MakeDir(remote); err != nil {
		return fmt.Errorf("ftp mkdir %s: %w", dir, err)
	}
	if err := conn.ChangeDir(remote); err != nil {
		return fmt.Errorf("ftp cd %s: %w", dir, err)
	}
	return nil
}

func (c *Client) store(conn *ftp.ServerConn, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	defer f.Close()

	name, err := c.RemoteName(filepath.Base(path))
	if err != nil {
		return err
	}
	if err := conn.Stor(name, f); err != nil {
		return fmt.Errorf("ftp store %s: %w", filepath.Base(path), err)
	}
	return nil
}
