package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/randalmurphal/shipdoc/config"
	"github.com/randalmurphal/shipdoc/logging"
)

// Fetch searches the configured mailbox for messages from the sender and
// returns them parsed, keeping attachments with extension ext. With
// UnseenOnly, only unseen messages are searched and the fetched ones are
// marked seen.
func Fetch(ctx context.Context, cfg config.IMAPConfig, ext string) ([]*Message, error) {
	log := logging.FromContext(ctx).With(slog.String("server", cfg.Host))

	c, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { c.Terminate() })
	defer stop()
	defer func() {
		if err := c.Logout(); err != nil {
			log.Debug("imap logout", slog.Any("error", err))
		}
	}()

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, false); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if cfg.Sender != "" {
		criteria.Header.Add("From", cfg.Sender)
	}
	if cfg.UnseenOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	log.Info("messages found", slog.Int("count", len(ids)))
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var out []*Message
	for m := range messages {
		body := m.GetBody(section)
		if body == nil {
			log.Warn("message without body", slog.Uint64("seq", uint64(m.SeqNum)))
			continue
		}
		msg, err := Parse(body, ext)
		if err != nil {
			log.Warn("skipping unreadable message", slog.Uint64("seq", uint64(m.SeqNum)), slog.Any("error", err))
			continue
		}
		out = append(out, msg)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	if cfg.UnseenOnly {
		flags := []interface{}{imap.SeenFlag}
		if err := c.Store(seqset, imap.FormatFlagsOp(imap.AddFlags, true), flags, nil); err != nil {
			return out, fmt.Errorf("imap mark seen: %w", err)
		}
	}
	return out, nil
}

func dial(cfg config.IMAPConfig) (*client.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	var (
		c   *client.Client
		err error
	)
	if cfg.TLS {
		c, err = client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: cfg.Host})
	} else {
		c, err = client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", addr, err)
	}
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	return c, nil
}
