package ingestion_engine

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PageSource yields per-page text for one open document. Pages are 1-based.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
	Close() error
}

// PDFOpener opens a stored document for page-wise extraction.
type PDFOpener interface {
	Open(path string) (PageSource, error)
}

// LedongthucOpener reads PDFs with github.com/ledongthuc/pdf, which needs a
// seekable file on disk.
type LedongthucOpener struct{}

func (LedongthucOpener) Open(path string) (PageSource, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfPages{f: f, reader: r}, nil
}

type pdfPages struct {
	f      *os.File
	reader *pdf.Reader
}

func (p *pdfPages) NumPages() int {
	return p.reader.NumPage()
}

func (p *pdfPages) PageText(page int) (string, error) {
	pg := p.reader.Page(page)
	if pg.V.IsNull() {
		return "", nil
	}
	text, err := pg.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", page, err)
	}
	return text, nil
}

func (p *pdfPages) Close() error {
	return p.f.Close()
}

var _ PDFOpener = LedongthucOpener{}
