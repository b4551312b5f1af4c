// Package detect scans extracted page text for chapter headings.
//
// Detection is a heuristic text classifier, not a guaranteed-correct
// chapter finder: missed chapters and spurious headings are both
// possible, which is why callers can layer manual overrides on top.
package detect

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/chapterize/chapterize/internal/pagetext"
)

// Mark is a detected chapter start: 0-based page index plus the
// normalized heading title. (Page, Title) is the dedup key.
type Mark struct {
	Page  int    `json:"page"`
	Title string `json:"title"`
}

// Ruleset holds the heading patterns and rejection rules as data so
// they can be tuned without touching the detection loop. Patterns are
// tried in order per line; the first accepted match wins the line.
type Ruleset struct {
	Patterns    []*regexp.Regexp
	MinTitleLen int // titles shorter than this are rejected
	MaxPeriods  int // more periods than this means a numeric reference, not a title
	ScanLines   int // headings are expected near the top of a page

	unitTight  *regexp.Regexp
	unitSpaced *regexp.Regexp
}

// Default unit vocabulary. A candidate title starting with a number
// followed by one of these is a measurement line that happened to look
// like a numbered heading.
var (
	defaultTightUnits  = []string{"psi", "ft", "m", "cm", "kg", "lbm", "hr", "°F", "°C", "kPa", "Btu"}
	defaultSpacedUnits = []string{"mol", "m3", "ft3", "L/s"}
)

var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(Topic\s+[IVX]+:\s*[A-Z][A-Za-z\s:,&/()-]+)`),
	regexp.MustCompile(`(?i)^\s*(\d+\.\s+[A-Z][A-Za-z\s:,&-]+)$`),
	regexp.MustCompile(`(?i)^\s*chapter\s+(\d+\.?\s*[A-Z][^\n]+)`),
	regexp.MustCompile(`(?i)^\s*chapter\s+(\w+\.?\s*[A-Z][^\n]+)`),
}

// NewRuleset builds a ruleset with the default patterns and thresholds
// but a caller-supplied unit vocabulary.
func NewRuleset(tightUnits, spacedUnits []string) Ruleset {
	return Ruleset{
		Patterns:    defaultPatterns,
		MinTitleLen: 11,
		MaxPeriods:  2,
		ScanLines:   5,
		unitTight:   unitPattern(`\s*`, tightUnits),
		unitSpaced:  unitPattern(`\s+`, spacedUnits),
	}
}

// DefaultRuleset returns the ruleset with the built-in unit vocabulary.
func DefaultRuleset() Ruleset {
	return NewRuleset(defaultTightUnits, defaultSpacedUnits)
}

func unitPattern(sep string, units []string) *regexp.Regexp {
	if len(units) == 0 {
		return nil
	}
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return regexp.MustCompile(`^\d+\.?\d*` + sep + `(?:` + strings.Join(quoted, "|") + `)`)
}

// Detect scans the first ScanLines lines of each page for chapter
// headings and returns a duplicate-free list of marks sorted by page.
// An empty result means no chapters were found; that is not an error.
func Detect(pages []pagetext.PageText, rs Ruleset, log *slog.Logger) []Mark {
	if log == nil {
		log = slog.Default()
	}

	seen := make(map[Mark]struct{})
	var marks []Mark

	for _, pt := range pages {
		if strings.TrimSpace(pt.Text) == "" {
			continue
		}
		lines := strings.Split(pt.Text, "\n")
		if len(lines) > rs.ScanLines {
			lines = lines[:rs.ScanLines]
		}

		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			for _, pat := range rs.Patterns {
				m := pat.FindStringSubmatch(line)
				if len(m) < 2 {
					continue
				}
				title := NormalizeTitle(m[1])
				if !rs.accept(title) {
					// A rejected candidate may still match a later,
					// stricter pattern on the same line.
					continue
				}
				mk := Mark{Page: pt.Page, Title: title}
				if _, dup := seen[mk]; !dup {
					seen[mk] = struct{}{}
					marks = append(marks, mk)
					log.Debug("detected chapter heading", "page", pt.Page+1, "title", title)
				}
				break
			}
		}
	}

	// Dedup used a map above; re-sort so the result never depends on
	// input ordering. Title breaks ties for same-page marks.
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Page != marks[j].Page {
			return marks[i].Page < marks[j].Page
		}
		return marks[i].Title < marks[j].Title
	})

	return marks
}

// NormalizeTitle collapses whitespace runs to single spaces and trims.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// accept applies the false-positive filters to a normalized candidate.
func (rs Ruleset) accept(title string) bool {
	if utf8.RuneCountInString(title) < rs.MinTitleLen {
		return false
	}
	if rs.unitTight != nil && rs.unitTight.MatchString(title) {
		return false
	}
	if rs.unitSpaced != nil && rs.unitSpaced.MatchString(title) {
		return false
	}
	if strings.Contains(strings.ToLower(title), "equation") {
		return false
	}
	if strings.Count(title, ".") > rs.MaxPeriods {
		return false
	}
	return true
}
