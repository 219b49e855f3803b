// Package mailbox fetches shipment mails over IMAP and saves their
// attachments.
package mailbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is a fetched mail reduced to what the pipeline needs.
type Message struct {
	Subject string
	From    string

	// Attachments holds the attachments whose extension matched. Skipped
	// lists the names of the others.
	Attachments []Attachment
	Skipped     []string
}

// Attachment is a decoded attachment.
type Attachment struct {
	Filename string
	Data     []byte
}

// Parse reads an RFC 5322 message and keeps the attachments whose file
// extension equals ext, compared case-insensitively. Encoded subjects and
// file names are decoded; non-UTF-8 charsets are supported.
func Parse(r io.Reader, ext string) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if msg.Subject, err = mr.Header.Subject(); err != nil {
		msg.Subject = mr.Header.Get("Subject")
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read message part: %w", err)
		}

		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		name, err := h.Filename()
		if err != nil || name == "" {
			continue
		}
		name = filepath.Base(name)
		if !MatchExt(name, ext) {
			msg.Skipped = append(msg.Skipped, name)
			continue
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, p.Body); err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", name, err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{Filename: name, Data: buf.Bytes()})
	}
	return msg, nil
}

// MatchExt reports whether name has extension ext. A leading dot on ext is
// optional.
func MatchExt(name, ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	return ext != "" && strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), ext)
}
