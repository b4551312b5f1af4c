// Package report builds the Markdown manifest written alongside split
// chapter files, and renders it to HTML for the API.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Chapter is one manifest row. Start and End are 0-based inclusive
// page indexes; the manifest prints them 1-based.
type Chapter struct {
	Ordinal   int
	Title     string
	Start     int
	End       int
	Filename  string
	Questions int
	Extracted bool
}

// Manifest describes one completed split.
type Manifest struct {
	Source      string
	TotalPages  int
	GeneratedAt time.Time
	Chapters    []Chapter
}

// Build renders the manifest as Markdown.
func Build(m Manifest) string {
	var sb strings.Builder
	sb.WriteString("# Chapter manifest\n\n")
	fmt.Fprintf(&sb, "- Source: `%s`\n", m.Source)
	fmt.Fprintf(&sb, "- Pages: %d\n", m.TotalPages)
	fmt.Fprintf(&sb, "- Generated: %s\n", m.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Chapters: %d\n\n", len(m.Chapters))

	if len(m.Chapters) == 0 {
		sb.WriteString("No chapters detected.\n")
		return sb.String()
	}

	sb.WriteString("| # | Chapter | Pages | File | Questions |\n")
	sb.WriteString("|---|---------|-------|------|-----------|\n")
	for _, ch := range m.Chapters {
		questions := "-"
		if ch.Extracted {
			questions = fmt.Sprintf("%d", ch.Questions)
		}
		fmt.Fprintf(&sb, "| %d | %s | %d-%d | `%s` | %s |\n",
			ch.Ordinal, escapeCell(ch.Title), ch.Start+1, ch.End+1, ch.Filename, questions)
	}
	return sb.String()
}

// Write builds the manifest and writes it to path.
func Write(path string, m Manifest) error {
	if err := os.WriteFile(path, []byte(Build(m)), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts manifest Markdown to an HTML fragment.
func RenderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
