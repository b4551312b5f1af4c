// Package pagetext extracts per-page plain text from PDF files.
package pagetext

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageText is the extracted text of a single page. Page is 0-based.
// Text may be empty when extraction of that page failed.
type PageText struct {
	Page int
	Text string
}

// Extractor pulls plain text out of a PDF one page at a time. It tries
// the Go library first and falls back to pdftotext per page if enabled.
type Extractor struct {
	FallbackPdftotext bool
	Logger            *slog.Logger
}

// ExtractPages returns one entry per page in document order, pages
// 0..count-1 with no gaps. A page whose extraction fails gets empty
// text and a logged warning; it never aborts the rest of the document.
func (e *Extractor) ExtractPages(path string) ([]PageText, error) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	count, err := PageCount(path)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	pages := make([]PageText, count)
	for i := range pages {
		pages[i].Page = i
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		if !e.FallbackPdftotext {
			return nil, fmt.Errorf("open pdf: %w", err)
		}
		log.Warn("pdf library open failed, using pdftotext", "error", err)
		reader = nil
	}
	if f != nil {
		defer f.Close()
	}

	for i := 0; i < count; i++ {
		text, err := e.extractPage(reader, path, i)
		if err != nil {
			log.Warn("page text extraction failed", "page", i+1, "error", err)
			continue
		}
		pages[i].Text = text
	}

	return pages, nil
}

// extractPage extracts a single page (0-based), falling back to
// pdftotext when the library fails and the fallback is enabled.
func (e *Extractor) extractPage(reader *pdflib.Reader, path string, page int) (string, error) {
	var libErr error
	if reader != nil && page < reader.NumPage() {
		text, err := pageText(reader, page+1)
		if err == nil {
			return text, nil
		}
		libErr = err
	} else {
		libErr = fmt.Errorf("page %d not readable", page+1)
	}

	if e.FallbackPdftotext {
		text, err := extractPdftotext(path, page+1)
		if err == nil {
			return text, nil
		}
		return "", fmt.Errorf("%v; pdftotext: %w", libErr, err)
	}
	return "", libErr
}

// pageText reads one page's plain text. GetPlainText panics on some
// malformed content streams, so the call is isolated behind a recover.
func pageText(reader *pdflib.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf content stream: %v", r)
		}
	}()

	p := reader.Page(pageNum)
	if p.V.IsNull() {
		return "", fmt.Errorf("null page object")
	}
	return p.GetPlainText(nil)
}

// extractPdftotext shells out to pdftotext (poppler-utils) for a
// single 1-based page.
func extractPdftotext(path string, pageNum int) (string, error) {
	n := strconv.Itoa(pageNum)
	cmd := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return count, nil
}
