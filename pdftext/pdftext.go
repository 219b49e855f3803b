package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/randalmurphal/shipdoc/logging"
)

// PageSeparator is written between pages.
const PageSeparator = "\f"

// ErrNoText indicates a PDF without any extractable text.
var ErrNoText = errors.New("pdf has no text layer")

// File extracts the text of the PDF at path.
func File(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	text, err := extract(ctx, r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Reader extracts the text of a PDF held in ra.
func Reader(ctx context.Context, ra io.ReaderAt, size int64) (string, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	return extract(ctx, r)
}

func extract(ctx context.Context, r *pdf.Reader) (string, error) {
	log := logging.FromContext(ctx)

	var pages []string
	glyphs := 0
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		gs, err := pageGlyphs(p)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		glyphs += len(gs)
		pages = append(pages, strings.Join(Layout(gs), "\n"))
	}

	log.Debug("pdf text extracted",
		slog.Int("pages", r.NumPage()),
		slog.Int("glyphs", glyphs))
	if glyphs == 0 {
		return "", ErrNoText
	}
	return strings.Join(pages, "\n"+PageSeparator+"\n"), nil
}

// pageGlyphs reads the positioned text of one page. The pdf package panics
// on some malformed content streams; that is reported as an error.
func pageGlyphs(p pdf.Page) (gs []Glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read content: %v", r)
		}
	}()

	for _, t := range p.Content().Text {
		gs = append(gs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return gs, nil
}
