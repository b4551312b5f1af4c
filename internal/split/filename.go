package split

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

const maxSlugLen = 50

// ChapterFilename maps a chapter title and 1-based ordinal to a
// filesystem-safe name of the form Chapter_NN_<slug>.pdf. It is pure
// and total: a symbol-only title degrades to an empty slug.
func ChapterFilename(title string, ordinal int) string {
	slug := unsafeChars.ReplaceAllString(title, "")
	slug = whitespace.ReplaceAllString(strings.TrimSpace(slug), "_")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return fmt.Sprintf("Chapter_%02d_%s.pdf", ordinal, slug)
}
