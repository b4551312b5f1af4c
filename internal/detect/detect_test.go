package detect

import (
	"testing"

	"github.com/chapterize/chapterize/internal/pagetext"
)

func pages(texts map[int]string) []pagetext.PageText {
	max := -1
	for p := range texts {
		if p > max {
			max = p
		}
	}
	out := make([]pagetext.PageText, max+1)
	for i := range out {
		out[i] = pagetext.PageText{Page: i, Text: texts[i]}
	}
	return out
}

func TestDetect_TopicAndChapterHeadings(t *testing.T) {
	in := pages(map[int]string{
		0: "Topic I: Mass and Energy Balances\nsome intro text\nmore text",
		1: "some content",
		2: "Chapter 2. Thermodynamics\nmore body",
		3: "more content",
	})

	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 2 {
		t.Fatalf("expected 2 marks, got %d: %v", len(marks), marks)
	}
	if marks[0].Page != 0 || marks[0].Title != "Topic I: Mass and Energy Balances" {
		t.Errorf("unexpected first mark: %+v", marks[0])
	}
	if marks[1].Page != 2 || marks[1].Title != "2. Thermodynamics" {
		t.Errorf("unexpected second mark: %+v", marks[1])
	}
}

func TestDetect_ChapterDigitsForm(t *testing.T) {
	in := pages(map[int]string{
		0: "Chapter 4. Fluid Dynamics and Pressure\nbody text",
	})
	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Title != "4. Fluid Dynamics and Pressure" {
		t.Errorf("expected title %q, got %q", "4. Fluid Dynamics and Pressure", marks[0].Title)
	}
}

func TestDetect_NumberedLineForm(t *testing.T) {
	in := pages(map[int]string{
		0: "3. Heat Transfer Fundamentals\nbody",
	})
	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Title != "3. Heat Transfer Fundamentals" {
		t.Errorf("got title %q", marks[0].Title)
	}
}

func TestDetect_RejectsMultiPartNumericReference(t *testing.T) {
	in := pages(map[int]string{
		0: "1.2.3 some reference\nbody",
	})
	if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
		t.Errorf("expected numeric reference to be rejected, got %v", marks)
	}
}

func TestDetect_RejectsMeasurementLines(t *testing.T) {
	tests := []string{
		"14 psi absolute pressure",
		"Chapter 250 °F Operating Limit Data",
		"12. Btu Conversion Factors",
	}
	for _, line := range tests {
		in := pages(map[int]string{0: line + "\nbody"})
		if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
			t.Errorf("expected measurement line %q to be rejected, got %v", line, marks)
		}
	}
}

func TestDetect_RejectsEquationReferences(t *testing.T) {
	in := pages(map[int]string{
		0: "Chapter 3. See Equation Reference Tables\nbody",
	})
	if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
		t.Errorf("expected equation reference to be rejected, got %v", marks)
	}
}

func TestDetect_RejectsShortTitles(t *testing.T) {
	// Normalized title "2. Heat" is under the 11-character minimum.
	in := pages(map[int]string{
		0: "Chapter 2. Heat\nbody",
	})
	if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
		t.Errorf("expected short title to be rejected, got %v", marks)
	}
}

func TestDetect_HeadingBeyondScanLinesIgnored(t *testing.T) {
	in := pages(map[int]string{
		0: "line1\nline2\nline3\nline4\nline5\nChapter 6. Mass Transfer Operations",
	})
	if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
		t.Errorf("expected heading on line 6 to be ignored, got %v", marks)
	}
}

func TestDetect_NormalizesWhitespace(t *testing.T) {
	in := pages(map[int]string{
		0: "Chapter 5.   Chemical   Reaction  Engineering\nbody",
	})
	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Title != "5. Chemical Reaction Engineering" {
		t.Errorf("expected collapsed whitespace, got %q", marks[0].Title)
	}
}

func TestDetect_DeduplicatesExactMatches(t *testing.T) {
	// The same heading within the scanned lines of one page collapses
	// to a single mark.
	in := pages(map[int]string{
		0: "Topic II: Fluid Dynamics and Flow\nTopic II: Fluid Dynamics and Flow\nbody",
	})
	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 1 {
		t.Fatalf("expected duplicate heading to collapse, got %d marks", len(marks))
	}
}

func TestDetect_SortedByPage(t *testing.T) {
	in := pages(map[int]string{
		7: "Chapter 3. Distillation Column Design",
		2: "Chapter 1. Material Balance Problems",
		5: "Chapter 2. Energy Balance Problems",
	})
	marks := Detect(in, DefaultRuleset(), nil)
	if len(marks) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(marks))
	}
	for i := 1; i < len(marks); i++ {
		if marks[i-1].Page >= marks[i].Page {
			t.Errorf("marks not sorted by page: %v", marks)
		}
	}
}

func TestDetect_EmptyAndBlankPages(t *testing.T) {
	in := pages(map[int]string{
		0: "",
		1: "   \n  ",
		2: "plain body text with no heading",
	})
	if marks := Detect(in, DefaultRuleset(), nil); len(marks) != 0 {
		t.Errorf("expected no marks, got %v", marks)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Topic I:   Mass  Balances ", "Topic I: Mass Balances"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
