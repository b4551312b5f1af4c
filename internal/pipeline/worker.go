package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chapterize/chapterize/internal/detect"
	"github.com/chapterize/chapterize/internal/extract"
	"github.com/chapterize/chapterize/internal/pagetext"
	"github.com/chapterize/chapterize/internal/report"
	"github.com/chapterize/chapterize/internal/split"
)

// Worker processes a single split job end to end. Phases inside a job
// run strictly sequentially; there is no shared state between jobs.
type Worker struct {
	client            extract.Client // nil disables Q&A extraction
	log               *slog.Logger
	ruleset           detect.Ruleset
	fallbackPdftotext bool
}

func NewWorker(client extract.Client, log *slog.Logger, ruleset detect.Ruleset, fallbackPdftotext bool) *Worker {
	return &Worker{
		client:            client,
		log:               log,
		ruleset:           ruleset,
		fallbackPdftotext: fallbackPdftotext,
	}
}

// Process runs the full split pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	src := job.SourcePath()
	if _, err := os.Stat(src); err != nil {
		log.Error("source pdf missing", "path", src, "error", err)
		job.AddError(fmt.Sprintf("source: %s", err))
		job.SetStatus(StatusFailed, "source check")
		return
	}

	// Phase 1: per-page text.
	job.SetStatus(StatusExtractingText, "extracting page text")
	extractor := &pagetext.Extractor{FallbackPdftotext: w.fallbackPdftotext, Logger: log}
	pages, err := extractor.ExtractPages(src)
	if err != nil {
		log.Error("page text extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract text: %s", err))
		job.SetStatus(StatusFailed, "extracting page text")
		return
	}
	job.SetPages(len(pages))

	// Phase 2: detect chapter boundaries.
	job.SetStatus(StatusDetecting, "detecting chapters")
	marks := detect.Detect(pages, w.ruleset, log)
	if len(marks) == 0 {
		log.Info("no chapters detected", "pages", len(pages))
		job.SetStatus(StatusNoChapters, "done")
		return
	}
	log.Info("detected chapters", "count", len(marks))

	// Phase 3: split.
	job.SetStatus(StatusSplitting, "splitting chapters")
	splitter := &split.Splitter{Logger: log}
	files, err := splitter.Split(src, job.ChaptersDir(), marks)
	job.SetChapters(len(marks), len(files), len(marks)-len(files))
	if err != nil {
		log.Error("split failed", "written", len(files), "error", err)
		job.AddError(fmt.Sprintf("split: %s", err))
		job.SetStatus(StatusFailed, "splitting chapters")
		return
	}

	manifest := buildManifest(job.Filename, len(pages), files, nil)
	if err := report.Write(job.ManifestPath(), manifest); err != nil {
		log.Warn("manifest write failed", "error", err)
	}

	if w.client == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 4: per-chapter Q&A extraction, strictly serial.
	job.SetStatus(StatusExtractingQA, "extracting questions")
	runner := &extract.BatchRunner{Client: w.client, Logger: log}
	res, err := runner.Run(ctx, job.ChaptersDir(), job.QADir())
	if err != nil {
		log.Error("extraction batch aborted", "error", err)
		job.AddError(fmt.Sprintf("extract qa: %s", err))
		job.SetStatus(StatusFailed, "extracting questions")
		return
	}
	job.SetQuestions(res.Questions)

	// Refresh the manifest with question counts.
	manifest = buildManifest(job.Filename, len(pages), files, &res)
	if err := report.Write(job.ManifestPath(), manifest); err != nil {
		log.Warn("manifest write failed", "error", err)
	}

	if res.Failed > 0 {
		for _, fr := range res.Files {
			if fr.Error != "" {
				job.AddError(fmt.Sprintf("%s: %s", fr.File, fr.Error))
			}
		}
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// buildManifest assembles the report rows from split output and, when
// available, extraction results.
func buildManifest(source string, totalPages int, files []split.ChapterFile, res *extract.BatchResult) report.Manifest {
	questions := make(map[string]int)
	extracted := make(map[string]bool)
	if res != nil {
		for _, fr := range res.Files {
			if fr.Error == "" && !fr.Skipped {
				questions[fr.File] = fr.Questions
				extracted[fr.File] = true
			}
		}
	}

	m := report.Manifest{
		Source:      source,
		TotalPages:  totalPages,
		GeneratedAt: time.Now(),
	}
	for _, f := range files {
		m.Chapters = append(m.Chapters, report.Chapter{
			Ordinal:   f.Ordinal,
			Title:     f.Title,
			Start:     f.Start,
			End:       f.End,
			Filename:  f.Filename,
			Questions: questions[f.Filename],
			Extracted: extracted[f.Filename],
		})
	}
	return m
}
