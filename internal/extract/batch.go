package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Client is the slice of the extraction client the batch runner needs.
// Swappable for tests.
type Client interface {
	ExtractChapter(ctx context.Context, pdfData []byte) (*ChapterQA, error)
}

// BatchRunner extracts Q&A records from every chapter PDF in a
// directory, strictly one file at a time. A file whose expected JSON
// output already exists is skipped, so reruns are idempotent. Per-file
// failures are logged and the batch continues.
type BatchRunner struct {
	Client Client
	Logger *slog.Logger
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Processed int          `json:"processed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Questions int          `json:"questions"`
	Files     []FileResult `json:"files,omitempty"`
}

// FileResult is the per-chapter outcome of a batch run.
type FileResult struct {
	File      string `json:"file"`
	Questions int    `json:"questions"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Run processes all *.pdf files in chapterDir in sorted order, writing
// one <name>.json per chapter into outDir.
func (r *BatchRunner) Run(ctx context.Context, chapterDir, outDir string) (BatchResult, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	var res BatchResult

	entries, err := os.ReadDir(chapterDir)
	if err != nil {
		return res, fmt.Errorf("read chapter directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		outPath := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
		if _, err := os.Stat(outPath); err == nil {
			log.Info("already processed, skipping", "file", name, "n", i+1, "of", len(names))
			res.Skipped++
			res.Files = append(res.Files, FileResult{File: name, Skipped: true})
			continue
		}

		log.Info("extracting chapter", "file", name, "n", i+1, "of", len(names))

		fail := func(stage string, err error) {
			log.Error(stage, "file", name, "error", err)
			res.Failed++
			res.Files = append(res.Files, FileResult{File: name, Error: err.Error()})
		}

		data, err := os.ReadFile(filepath.Join(chapterDir, name))
		if err != nil {
			fail("read chapter failed", err)
			continue
		}

		qa, err := r.extractWithRetry(ctx, data, log.With("file", name))
		if err == nil && qa == nil {
			err = fmt.Errorf("empty extraction result")
		}
		if err != nil {
			fail("extraction failed", err)
			continue
		}

		qa.Questions = ValidQuestions(qa)

		out, err := json.MarshalIndent(qa, "", "  ")
		if err != nil {
			fail("marshal chapter failed", err)
			continue
		}
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			fail("write chapter json failed", err)
			continue
		}

		res.Processed++
		res.Questions += len(qa.Questions)
		res.Files = append(res.Files, FileResult{File: name, Questions: len(qa.Questions)})
		log.Info("saved chapter json", "file", filepath.Base(outPath), "questions", len(qa.Questions))
	}

	return res, nil
}

func (r *BatchRunner) extractWithRetry(ctx context.Context, data []byte, log *slog.Logger) (*ChapterQA, error) {
	var qa *ChapterQA
	var lastErr error
	for attempt := range MaxRetries {
		qa, lastErr = r.Client.ExtractChapter(ctx, data)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable extraction error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return qa, lastErr
}
