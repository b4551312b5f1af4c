// Package split copies chapter page ranges out of a source PDF into
// one output PDF per chapter.
package split

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/chapterize/chapterize/internal/detect"
	"github.com/chapterize/chapterize/internal/pagetext"
)

// Range is a derived chapter page range, inclusive on both ends.
type Range struct {
	Start int
	End   int
	Title string
}

// ChapterFile describes one written chapter PDF.
type ChapterFile struct {
	Ordinal  int    `json:"ordinal"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Start    int    `json:"start_page"`
	End      int    `json:"end_page"`
	Pages    int    `json:"pages"`
}

// Ranges derives contiguous chapter ranges from sorted marks: each
// chapter ends one page before the next chapter starts, and the final
// chapter runs to the last page of the document.
func Ranges(marks []detect.Mark, totalPages int) []Range {
	ranges := make([]Range, 0, len(marks))
	for i, m := range marks {
		end := totalPages - 1
		if i+1 < len(marks) {
			end = marks[i+1].Page - 1
		}
		ranges = append(ranges, Range{Start: m.Page, End: end, Title: m.Title})
	}
	return ranges
}

// Splitter writes chapter PDFs using pdfcpu page extraction.
type Splitter struct {
	Logger *slog.Logger
}

// Split copies each chapter's page range from srcPath into outDir,
// creating the directory if absent. Empty or out-of-bounds ranges are
// skipped with a warning rather than producing empty files. A chapter
// whose output file already exists is left untouched, so reruns into
// the same directory never rewrite files. Write failures are not
// retried; they surface to the caller.
func (s *Splitter) Split(srcPath, outDir string, marks []detect.Mark) ([]ChapterFile, error) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	totalPages, err := pagetext.PageCount(srcPath)
	if err != nil {
		return nil, fmt.Errorf("source page count: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var files []ChapterFile
	for i, r := range Ranges(marks, totalPages) {
		ordinal := i + 1
		if r.Start >= totalPages || r.Start > r.End {
			log.Warn("skipping empty chapter range",
				"chapter", ordinal, "title", r.Title, "start", r.Start+1, "end", r.End+1)
			continue
		}

		filename := ChapterFilename(r.Title, ordinal)
		outPath := filepath.Join(outDir, filename)
		cf := ChapterFile{
			Ordinal:  ordinal,
			Title:    r.Title,
			Filename: filename,
			Path:     outPath,
			Start:    r.Start,
			End:      r.End,
			Pages:    r.End - r.Start + 1,
		}

		// pdfcpu stamps fresh metadata into every file it writes, so
		// rewriting an existing chapter would change its bytes.
		if _, err := os.Stat(outPath); err == nil {
			log.Info("chapter already written, skipping", "file", filename)
			files = append(files, cf)
			continue
		}

		// pdfcpu page selections are 1-based.
		selection := fmt.Sprintf("%d-%d", r.Start+1, r.End+1)
		if err := api.TrimFile(srcPath, outPath, []string{selection}, nil); err != nil {
			return files, fmt.Errorf("write chapter %d (%s): %w", ordinal, filename, err)
		}

		files = append(files, cf)
		log.Info("wrote chapter", "file", filename, "pages", selection)
	}

	return files, nil
}
