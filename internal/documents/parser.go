package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// pdfMagic is the header every well-formed PDF starts with.
var pdfMagic = []byte("%PDF-")

// Page holds the extracted text of a single PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// PageExtractor extracts per-page text from raw document bytes. It
// returns the pages that yielded text, the total page count and the
// number of pages that failed extraction. Pages with no extractable
// text are skipped, not fatal.
type PageExtractor interface {
	ExtractPages(data []byte) (pages []Page, total int, pageErrors int, err error)
}

// FitzExtractor extracts PDF text with MuPDF via go-fitz.
type FitzExtractor struct{}

// NewFitzExtractor creates a go-fitz backed page extractor.
func NewFitzExtractor() *FitzExtractor { return &FitzExtractor{} }

// ExtractPages opens the document from memory and reads every page.
// A page that fails to render is counted and skipped; the whole call only
// fails when the document cannot be opened at all.
func (e *FitzExtractor) ExtractPages(data []byte) ([]Page, int, int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]Page, 0, total)
	pageErrors := 0
	for i := 0; i < total; i++ {
		text, err := doc.Text(i)
		if err != nil {
			pageErrors++
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	}
	return pages, total, pageErrors, nil
}

// IsPDF reports whether data carries the PDF header. The upload layer
// already enforces the .pdf extension; this guards against renamed files.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}
