package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chapterize/chapterize/internal/detect"
	"github.com/chapterize/chapterize/internal/extract"
	"github.com/chapterize/chapterize/internal/manual"
	"github.com/chapterize/chapterize/internal/pagetext"
	"github.com/chapterize/chapterize/internal/report"
	"github.com/chapterize/chapterize/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <pdf>",
	Short: "Split a PDF into per-chapter files",
	Long: `Split scans the source PDF for chapter headings and writes one PDF per
chapter into the output directory, plus a Markdown manifest listing the
chapters and their page ranges.

With --interactive, detected chapters are shown and you can add start
pages by hand; manual entries override detection on the same page. With
--manual-only, detection is skipped and only your entries are used.
With --extract, the questions in each chapter are then extracted to
JSON (requires ANTHROPIC_API_KEY).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)
		src := args[0]

		outDir, _ := cmd.Flags().GetString("output")
		interactive, _ := cmd.Flags().GetBool("interactive")
		manualOnly, _ := cmd.Flags().GetBool("manual-only")
		runExtract, _ := cmd.Flags().GetBool("extract")
		fallback, _ := cmd.Flags().GetBool("fallback-pdftotext")

		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("source file: %w", err)
		}

		// Ctrl-C during the manual prompt keeps whatever was entered.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var marks []detect.Mark
		if !manualOnly {
			extractor := &pagetext.Extractor{FallbackPdftotext: fallback, Logger: log}
			pages, err := extractor.ExtractPages(src)
			if err != nil {
				return fmt.Errorf("extract page text: %w", err)
			}
			marks = detect.Detect(pages, detect.DefaultRuleset(), log)
			for _, m := range marks {
				fmt.Printf("detected: page %d - %s\n", m.Page+1, m.Title)
			}
		}

		if interactive || manualOnly {
			collector := &manual.Collector{In: os.Stdin, Out: os.Stdout, Logger: log}
			entered := collector.Collect(ctx)
			marks = manual.Merge(marks, entered)
		}

		if len(marks) == 0 {
			fmt.Println("No chapters found; nothing to split.")
			return nil
		}

		splitter := &split.Splitter{Logger: log}
		files, err := splitter.Split(src, outDir, marks)
		if err != nil {
			return fmt.Errorf("split: %w", err)
		}
		fmt.Printf("Wrote %d chapter files to %s\n", len(files), outDir)

		totalPages, err := pagetext.PageCount(src)
		if err != nil {
			return fmt.Errorf("page count: %w", err)
		}

		var batchRes *extract.BatchResult
		if runExtract {
			apiKey := viper.GetString("anthropic_api_key")
			if apiKey == "" {
				apiKey = os.Getenv("ANTHROPIC_API_KEY")
			}
			if apiKey == "" {
				return fmt.Errorf("--extract requires ANTHROPIC_API_KEY")
			}
			model := viper.GetString("anthropic_model")
			if model == "" {
				model = defaultModel
			}
			qaDir, _ := cmd.Flags().GetString("qa-output")

			client := extract.NewClaudeClient(apiKey, model)
			defer client.Close()

			runner := &extract.BatchRunner{Client: client, Logger: log}
			res, err := runner.Run(ctx, outDir, qaDir)
			if err != nil {
				return fmt.Errorf("extract questions: %w", err)
			}
			batchRes = &res
			fmt.Printf("Extracted %d questions (%d files processed, %d skipped, %d failed)\n",
				res.Questions, res.Processed, res.Skipped, res.Failed)
		}

		manifest := buildCLIManifest(filepath.Base(src), totalPages, files, batchRes)
		manifestPath := filepath.Join(outDir, "manifest.md")
		if err := report.Write(manifestPath, manifest); err != nil {
			return err
		}
		fmt.Printf("Manifest written to %s\n", manifestPath)
		return nil
	},
}

func buildCLIManifest(source string, totalPages int, files []split.ChapterFile, res *extract.BatchResult) report.Manifest {
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

	m := report.Manifest{Source: source, TotalPages: totalPages, GeneratedAt: time.Now()}
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

func init() {
	splitCmd.Flags().StringP("output", "o", "chapters", "output directory for chapter PDFs")
	splitCmd.Flags().String("qa-output", "extracted_qa", "output directory for extracted question JSON")
	splitCmd.Flags().BoolP("interactive", "i", false, "review detected chapters and add start pages by hand")
	splitCmd.Flags().Bool("manual-only", false, "skip detection; use only manually entered chapters")
	splitCmd.Flags().Bool("extract", false, "extract questions from each chapter after splitting")
	splitCmd.Flags().Bool("fallback-pdftotext", true, "fall back to the pdftotext binary for pages the native reader cannot parse")

	rootCmd.AddCommand(splitCmd)
}
