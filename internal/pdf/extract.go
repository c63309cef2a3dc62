// Package pdf extracts identifiers and text content from PDF documents.
package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/litsort/litsort/internal/doi"
)

const (
	// MaxTextPages bounds how many leading pages are scanned for text.
	MaxTextPages = 5
	// MaxOCRPages bounds how many leading pages go through the OCR fallback.
	MaxOCRPages = 3
)

// ErrUnreadable marks documents that cannot be opened or parsed at all,
// typically encrypted or truncated files.
var ErrUnreadable = errors.New("unreadable or encrypted document")

// Extraction is what could be pulled out of one document.
type Extraction struct {
	DOI       string // normalized identifier, empty when none was found
	Text      string // concatenated text of the leading pages
	FirstPage string // text of the first page only
}

// OCR recognizes text on rasterized pages. Implementations shell out to an
// external engine; a nil OCR disables the fallback entirely.
type OCR interface {
	Text(path string, maxPages int) (string, error)
}

// Extract pulls an identifier and leading-page text from the document at
// path. The identifier comes from the document information dictionary when
// it carries a DOI-shaped value, otherwise from the text of the first
// MaxTextPages pages, otherwise — for documents with no extractable text at
// all — from OCR over the first MaxOCRPages pages. A missing identifier is
// not an error; only a document that cannot be opened fails, with
// ErrUnreadable.
func Extract(path string, ocr OCR) (ex *Extraction, err error) {
	// The underlying parser panics on some malformed files; those count as
	// unreadable rather than crashing the worker.
	defer func() {
		if r := recover(); r != nil {
			ex, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	text, first := leadingText(r)

	if id := infoDOI(r); id != "" {
		return &Extraction{DOI: id, Text: text, FirstPage: first}, nil
	}

	if id := doi.Find(text); id != "" {
		return &Extraction{DOI: id, Text: text, FirstPage: first}, nil
	}

	// OCR only helps documents with no extractable text (scans).
	if strings.TrimSpace(text) == "" && ocr != nil {
		ocrText, ocrErr := ocr.Text(path, MaxOCRPages)
		if ocrErr == nil && strings.TrimSpace(ocrText) != "" {
			return &Extraction{DOI: doi.Find(ocrText), Text: ocrText, FirstPage: ocrText}, nil
		}
	}

	return &Extraction{Text: text, FirstPage: first}, nil
}

// infoDOI returns a DOI-shaped value from the document information
// dictionary, normalized, or "".
func infoDOI(r *pdf.Reader) string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	for _, key := range []string{"doi", "DOI"} {
		v := info.Key(key)
		if v.Kind() != pdf.String {
			continue
		}
		if s := strings.TrimSpace(v.Text()); s != "" && doi.Valid(s) {
			return doi.Normalize(s)
		}
	}
	return ""
}

// leadingText concatenates text from the first MaxTextPages pages, skipping
// pages that fail to extract, and returns the first page's text separately.
func leadingText(r *pdf.Reader) (all, first string) {
	maxPages := MaxTextPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i == 1 {
			first = text
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), first
}
