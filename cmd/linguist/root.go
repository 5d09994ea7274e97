package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rahul4469/linguist-ai/internal/config"
	"github.com/rahul4469/linguist-ai/internal/logutil"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/spf13/cobra"
)

// errAnalysisFailed makes the process exit non-zero after the error state
// has already been printed.
var errAnalysisFailed = errors.New("analysis failed")

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errAnalysisFailed) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "linguist",
		Short:         "Syntactic analysis of English sentences",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file path (optional).")
	cmd.PersistentFlags().String("model", "", "Gemini model (overrides config).")

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newREPLCmd())
	cmd.AddCommand(newGenKeyCmd())

	return cmd
}

// setup loads config and builds the analyzer shared by analyze and repl.
func setup(cmd *cobra.Command) (*services.GeminiService, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.APIs.GeminiModel = model
	}

	logger, err := logutil.FromConfig(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	gemini := services.NewGeminiService(services.GeminiOptions{
		APIKey:  cfg.APIs.GeminiAPIKey,
		Model:   cfg.APIs.GeminiModel,
		BaseURL: cfg.APIs.GeminiBaseURL,
		Timeout: cfg.APIs.GeminiTimeout,
	})
	logger.Debug("analyzer_ready", "model", gemini.Model())
	return gemini, logger, nil
}
