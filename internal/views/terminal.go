package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
)

var (
	titleColor   = color.New(color.FgMagenta, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	labelColor   = color.New(color.FgHiBlack)

	roleColors = map[models.Role]*color.Color{
		models.RoleSubject:  color.New(color.FgBlue, color.Bold),
		models.RoleVerb:     color.New(color.FgGreen, color.Bold),
		models.RoleObject:   color.New(color.FgMagenta, color.Bold),
		models.RoleModifier: color.New(color.FgYellow, color.Bold),
		models.RoleOther:    color.New(color.FgWhite),
	}
)

// TerminalRenderer prints request states for the CLI.
type TerminalRenderer struct {
	w         io.Writer
	formatter *services.ReportFormatter
}

func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{w: w, formatter: services.NewReportFormatter()}
}

// Render writes the view for state. Like NewStateView it handles every variant.
func (tr *TerminalRenderer) Render(state models.RequestState) {
	switch s := state.(type) {
	case models.StateIdle:
		infoColor.Fprintln(tr.w, "Enter a sentence to analyze (e.g. 'The cat sit on the mat.')")
	case models.StateLoading:
		infoColor.Fprintf(tr.w, "Analyzing %q...\n", s.Input)
	case models.StateError:
		errorColor.Fprintln(tr.w, "Analysis Error")
		fmt.Fprintln(tr.w, s.Message)
	case models.StateSuccess:
		tr.renderResult(s.Result)
	default:
		panic(fmt.Sprintf("views: unhandled request state %T", state))
	}
}

func (tr *TerminalRenderer) renderResult(r *models.AnalysisResponse) {
	titleColor.Fprintln(tr.w, "Syntactic Tokenization")
	badges := make([]string, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		c, ok := roleColors[t.Role]
		if !ok {
			c = roleColors[models.RoleOther]
		}
		badges = append(badges, c.Sprintf("%s", t.Word)+labelColor.Sprintf("/%s", t.PartOfSpeech))
	}
	fmt.Fprintln(tr.w, strings.Join(badges, " "))

	counts := r.RoleCounts()
	tally := make([]string, 0, len(models.Roles))
	for _, role := range models.Roles {
		if n := counts[role]; n > 0 {
			tally = append(tally, roleColors[role].Sprintf("%s %d", role, n))
		}
	}
	labelColor.Fprint(tr.w, "Roles: ")
	fmt.Fprintln(tr.w, strings.Join(tally, "  "))
	fmt.Fprintln(tr.w)

	if r.GrammarIssues.Detected {
		errorColor.Fprintln(tr.w, "Issues Detected")
	} else {
		successColor.Fprintln(tr.w, "Grammatically Perfect!")
	}
	fmt.Fprintln(tr.w)

	titleColor.Fprintln(tr.w, "Raw Output Report")
	fmt.Fprint(tr.w, tr.formatter.Format(r))
}
