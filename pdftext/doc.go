// Package pdftext renders PDF pages as layout-preserving plain text.
//
// Every text run on a page is placed at the character column its x position
// maps to, so tables keep their columns aligned and can be read by the
// fixed-width table parser:
//
//	text, err := pdftext.File(ctx, "packing-list.pdf")
//	lines := strings.Split(text, "\n")
//
// Pages are separated by a form feed line. Scanned PDFs without a text
// layer produce empty text.
package pdftext
