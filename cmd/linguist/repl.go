package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/rahul4469/linguist-ai/internal/views"
	"github.com/spf13/cobra"
)

const (
	replPrompt   = "> "
	cmdRetry     = ":retry"
	cmdQuit      = ":quit"
	replMaxInput = 1 << 20
)

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Analyze sentences interactively (:retry after an error, :quit to exit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			session := services.NewAnalysisSession("repl", analyzer, logger)
			return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), session)
		},
	}
}

// runREPL reads one sentence per line until EOF or :quit. Blank lines are
// ignored and :retry re-submits the last input after a failure.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, session *services.AnalysisSession) error {
	if ctx == nil {
		ctx = context.Background()
	}
	renderer := views.NewTerminalRenderer(out)
	renderer.Render(session.State())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), replMaxInput)

	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()

		var started bool
		switch strings.TrimSpace(line) {
		case "":
			continue
		case cmdQuit:
			return nil
		case cmdRetry:
			started = session.Retry(ctx)
			if !started {
				fmt.Fprintln(out, "Nothing to retry.")
				continue
			}
		default:
			started = session.Submit(ctx, line)
		}
		if !started {
			continue
		}

		renderer.Render(models.StateLoading{Input: session.Input()})
		state := session.Wait(ctx)
		if models.IsLoading(state) {
			return ctx.Err()
		}
		renderer.Render(state)
	}
}
