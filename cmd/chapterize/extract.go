package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chapterize/chapterize/internal/extract"
)

const defaultModel = "claude-sonnet-4-5-20250929"

var extractCmd = &cobra.Command{
	Use:   "extract <chapters-dir>",
	Short: "Extract questions from already-split chapter PDFs",
	Long: `Extract runs question extraction over every chapter PDF in the given
directory, writing one JSON file per chapter. Chapters that already
have a JSON file are skipped, so an interrupted run can be resumed by
running the command again.

Requires ANTHROPIC_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd)
		chapterDir := args[0]
		outDir, _ := cmd.Flags().GetString("output")

		apiKey := viper.GetString("anthropic_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		model := viper.GetString("anthropic_model")
		if model == "" {
			model = defaultModel
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := extract.NewClaudeClient(apiKey, model)
		defer client.Close()

		runner := &extract.BatchRunner{Client: client, Logger: log}
		res, err := runner.Run(ctx, chapterDir, outDir)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d questions (%d files processed, %d skipped, %d failed)\n",
			res.Questions, res.Processed, res.Skipped, res.Failed)
		for _, fr := range res.Files {
			if fr.Error != "" {
				fmt.Fprintf(os.Stderr, "failed: %s: %s\n", fr.File, fr.Error)
			}
		}
		if res.Failed > 0 {
			return fmt.Errorf("%d chapters failed extraction", res.Failed)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("output", "o", "extracted_qa", "output directory for extracted question JSON")

	rootCmd.AddCommand(extractCmd)
}
