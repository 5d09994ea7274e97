package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/rahul4469/linguist-ai/internal/views"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze one sentence (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			analyzer, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			err = runAnalyze(cmd.Context(), cmd.OutOrStdout(), analyzer, logger, text, asJSON)
			if errors.Is(err, models.ErrEmptyInput) {
				return cmd.Usage()
			}
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Print the state as JSON instead of the colored report.")
	return cmd
}

type jsonState struct {
	Status models.Status            `json:"status"`
	Input  string                   `json:"input"`
	Result *models.AnalysisResponse `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// runAnalyze drives one session from Idle to a settled state and prints it.
// It returns errAnalysisFailed when the session ends in Error, and
// models.ErrEmptyInput after printing guidance when text is blank.
func runAnalyze(ctx context.Context, w io.Writer, analyzer services.Analyzer, logger *slog.Logger, text string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	session := services.NewAnalysisSession("cli", analyzer, logger)
	if !session.Submit(ctx, text) {
		views.NewTerminalRenderer(w).Render(session.State())
		return models.ErrEmptyInput
	}
	if !asJSON {
		views.NewTerminalRenderer(w).Render(models.StateLoading{Input: text})
	}
	state := session.Wait(ctx)
	if models.IsLoading(state) {
		return ctx.Err()
	}

	if asJSON {
		view := views.NewStateView(session.Input(), state)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonState{
			Status: view.Status,
			Input:  view.Input,
			Result: view.Result,
			Error:  view.Message,
		}); err != nil {
			return err
		}
	} else {
		views.NewTerminalRenderer(w).Render(state)
	}

	if _, failed := state.(models.StateError); failed {
		return errAnalysisFailed
	}
	return nil
}
