package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fakeClient returns canned chapters keyed by PDF content.
type fakeClient struct {
	responses map[string]*ChapterQA
	errs      map[string]error
	calls     []string
}

func (f *fakeClient) ExtractChapter(ctx context.Context, pdfData []byte) (*ChapterQA, error) {
	key := string(pdfData)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.responses[key], nil
}

func writePDF(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func oneQuestionChapter() *ChapterQA {
	q := validQuestion()
	return &ChapterQA{Questions: []QuestionAnswer{q}}
}

func TestBatchRunner_ProcessesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "Chapter_02_Thermodynamics.pdf", "ch2")
	writePDF(t, dir, "Chapter_01_Mass_Balances.pdf", "ch1")

	fc := &fakeClient{responses: map[string]*ChapterQA{
		"ch1": oneQuestionChapter(),
		"ch2": oneQuestionChapter(),
	}}
	r := &BatchRunner{Client: fc}

	res, err := r.Run(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 2 || res.Questions != 2 {
		t.Errorf("expected 2 processed with 2 questions, got %+v", res)
	}
	if len(fc.calls) != 2 || fc.calls[0] != "ch1" || fc.calls[1] != "ch2" {
		t.Errorf("expected sorted serial processing, got calls %v", fc.calls)
	}

	for _, name := range []string{"Chapter_01_Mass_Balances.json", "Chapter_02_Thermodynamics.json"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
		var qa ChapterQA
		if err := json.Unmarshal(data, &qa); err != nil {
			t.Fatalf("output %s is not valid json: %v", name, err)
		}
		if len(qa.Questions) != 1 {
			t.Errorf("output %s: expected 1 question, got %d", name, len(qa.Questions))
		}
	}
}

func TestBatchRunner_SkipsAlreadyProcessed(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "Chapter_01_Done.pdf", "done")
	writePDF(t, dir, "Chapter_02_Fresh.pdf", "fresh")
	if err := os.WriteFile(filepath.Join(out, "Chapter_01_Done.json"), []byte(`{"questions":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := &fakeClient{responses: map[string]*ChapterQA{"fresh": oneQuestionChapter()}}
	r := &BatchRunner{Client: fc}

	res, err := r.Run(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Processed != 1 {
		t.Errorf("expected 1 skipped and 1 processed, got %+v", res)
	}
	if len(fc.calls) != 1 || fc.calls[0] != "fresh" {
		t.Errorf("expected only the fresh chapter extracted, got calls %v", fc.calls)
	}
}

func TestBatchRunner_PerFileFailureDoesNotHaltBatch(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "Chapter_01_Bad.pdf", "bad")
	writePDF(t, dir, "Chapter_02_Good.pdf", "good")

	fc := &fakeClient{
		responses: map[string]*ChapterQA{"good": oneQuestionChapter()},
		errs:      map[string]error{"bad": fmt.Errorf("malformed chapter")},
	}
	r := &BatchRunner{Client: fc}

	res, err := r.Run(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 1 || res.Processed != 1 {
		t.Errorf("expected 1 failed and 1 processed, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(out, "Chapter_02_Good.json")); err != nil {
		t.Errorf("expected good chapter output despite earlier failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "Chapter_01_Bad.json")); !os.IsNotExist(err) {
		t.Errorf("expected no output for failed chapter")
	}
}

func TestBatchRunner_FiltersInvalidQuestions(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "Chapter_01_Mixed.pdf", "mixed")

	good := validQuestion()
	bad := validQuestion()
	bad.CorrectAnswer = "Z"
	fc := &fakeClient{responses: map[string]*ChapterQA{
		"mixed": {Questions: []QuestionAnswer{good, bad}},
	}}
	r := &BatchRunner{Client: fc}

	res, err := r.Run(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Questions != 1 {
		t.Errorf("expected 1 valid question, got %d", res.Questions)
	}
}

func TestBatchRunner_IgnoresNonPDFEntries(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "notes.txt", "text")
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	fc := &fakeClient{}
	r := &BatchRunner{Client: fc}
	res, err := r.Run(context.Background(), dir, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 0 || len(fc.calls) != 0 {
		t.Errorf("expected nothing processed, got %+v calls %v", res, fc.calls)
	}
}

func TestBatchRunner_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writePDF(t, dir, "Chapter_01_Any.pdf", "any")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &BatchRunner{Client: &fakeClient{}}
	if _, err := r.Run(ctx, dir, out); err == nil {
		t.Error("expected context error")
	}
}
