// Package manual collects operator-supplied chapter boundaries for
// use when automatic detection misses or misfires.
package manual

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/chapterize/chapterize/internal/detect"
)

// Collector prompts an operator for (page, title) pairs. Input pages
// are 1-based; collected marks are 0-based. Invalid input is reported
// and the prompt repeats. Collection ends on a blank page entry, EOF,
// or context cancellation, returning whatever was gathered so far.
type Collector struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
}

// Collect runs the prompt loop and returns the entered marks sorted
// by page index.
func (c *Collector) Collect(ctx context.Context) []detect.Mark {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	// The reader goroutine cannot be unblocked from sc.Scan(), so when
	// Collect returns on a blank entry it may stay parked there (or on
	// the channel send) until the context is cancelled. The CLI cancels
	// via signal.NotifyContext on exit; callers holding a long-lived
	// context should cancel it once collection is done.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var marks []detect.Mark
	for {
		select {
		case <-ctx.Done():
			log.Info("manual input interrupted", "collected", len(marks))
			return sorted(marks)
		default:
		}

		fmt.Fprint(c.Out, "Page number (1-based) for chapter start, blank to finish: ")
		pageLine, ok := c.readLine(ctx, lines)
		if !ok || strings.TrimSpace(pageLine) == "" {
			return sorted(marks)
		}

		page, err := strconv.Atoi(strings.TrimSpace(pageLine))
		if err != nil {
			fmt.Fprintln(c.Out, "please enter a valid page number")
			continue
		}
		if page < 1 {
			fmt.Fprintln(c.Out, "page number must be positive")
			continue
		}

		fmt.Fprint(c.Out, "Chapter title: ")
		titleLine, ok := c.readLine(ctx, lines)
		if !ok {
			return sorted(marks)
		}
		title := detect.NormalizeTitle(titleLine)
		if title == "" {
			fmt.Fprintln(c.Out, "chapter title cannot be empty")
			continue
		}

		marks = append(marks, detect.Mark{Page: page - 1, Title: title})
		fmt.Fprintf(c.Out, "added: page %d - %s\n", page, title)
	}
}

func (c *Collector) readLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case line, ok := <-lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

// Merge combines detected and manually entered marks. Manual entries
// win on page-index collision; the result is re-sorted by page and
// exact duplicates collapse.
func Merge(auto, manual []detect.Mark) []detect.Mark {
	overridden := make(map[int]bool, len(manual))
	for _, m := range manual {
		overridden[m.Page] = true
	}

	seen := make(map[detect.Mark]struct{}, len(auto)+len(manual))
	merged := make([]detect.Mark, 0, len(auto)+len(manual))
	add := func(m detect.Mark) {
		if _, dup := seen[m]; dup {
			return
		}
		seen[m] = struct{}{}
		merged = append(merged, m)
	}

	for _, m := range manual {
		add(m)
	}
	for _, m := range auto {
		if !overridden[m.Page] {
			add(m)
		}
	}

	return sorted(merged)
}

func sorted(marks []detect.Mark) []detect.Mark {
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Page != marks[j].Page {
			return marks[i].Page < marks[j].Page
		}
		return marks[i].Title < marks[j].Title
	})
	return marks
}
