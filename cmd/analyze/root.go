package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/analysis"
	"github.com/spacesedan/sentidash/internal/bootstrap"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	model   string
	scorer  string
	format  string
	verbose bool
}

func newRootCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Classify the sentiment of a text",
		Long: `Runs the sentiment pipeline on the given text, or on stdin when no
arguments are given, and prints the result as JSON.

Example:
  # Score a sentence with the local model artifacts
  analyze --model ./models "The update is fantastic"

  # Score a Markdown file with VADER
  analyze --scorer vader --format markdown < README.md`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model directory or s3://bucket/prefix (overrides MODEL_LOCATION)")
	cmd.Flags().StringVarP(&flags.scorer, "scorer", "s", "", "Scorer: model, vader or openai (overrides SCORER)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", models.FormatText, "Input format: text or markdown")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log pipeline details to stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, flags *analyzeFlags) error {
	if !flags.verbose {
		logging.Discard()
	}
	config.LoadEnv(config.Env())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.model != "" {
		cfg.ModelLocation = flags.model
	}
	if flags.scorer != "" {
		cfg.Scorer = strings.ToLower(flags.scorer)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if flags.verbose {
		logging.InitLogger(cfg.LogLevel)
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	text, err = analysis.PrepareText(text, flags.format)
	if err != nil {
		return err
	}

	analyzer, err := bootstrap.NewAnalyzer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}

	result, err := analyzer.Analyze(cmd.Context(), text)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewResultPayload(result))
}
