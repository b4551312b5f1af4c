package pagetext

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestPDF builds a minimal valid PDF with the given page count
// and writes it under dir.
func writeTestPDF(t *testing.T, dir string, pages int) string {
	t.Helper()

	var buf bytes.Buffer
	offsets := []int{0} // xref slot 0 is the free-list head
	buf.WriteString("%PDF-1.4\n")

	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))

	for i := 0; i < pages; i++ {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", i+3))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), xrefOffset)

	path := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write test pdf: %v", err)
	}
	return path
}

func TestPageCount(t *testing.T) {
	src := writeTestPDF(t, t.TempDir(), 4)
	count, err := PageCount(src)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 pages, got %d", count)
	}
}

func TestPageCount_MissingFile(t *testing.T) {
	if _, err := PageCount(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractPages_OneEntryPerPageInOrder(t *testing.T) {
	src := writeTestPDF(t, t.TempDir(), 4)

	e := &Extractor{}
	pages, err := e.ExtractPages(src)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 4 {
		t.Fatalf("expected 4 page entries, got %d", len(pages))
	}
	// Page indexes must be exactly 0..count-1 with no gaps, even for
	// pages whose text extraction yields nothing.
	for i, p := range pages {
		if p.Page != i {
			t.Errorf("entry %d: expected page index %d, got %d", i, i, p.Page)
		}
	}
}

func TestExtractPages_MissingFile(t *testing.T) {
	e := &Extractor{}
	if _, err := e.ExtractPages(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
