package services

import (
	"fmt"
	"strings"

	"github.com/rahul4469/linguist-ai/internal/models"
)

// ReportFormatter renders an analysis as the plain-text "raw output report".
type ReportFormatter struct{}

// NewReportFormatter constructor creates a new report formatter
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

// Format writes the labelled summary lines followed by a token table.
func (rf *ReportFormatter) Format(resp *models.AnalysisResponse) string {
	if resp == nil {
		return ""
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Original Sentence: %s\n", resp.OriginalSentence))
	output.WriteString(fmt.Sprintf("Syntactic Analysis Summary: %s\n", resp.SyntacticSummary))
	output.WriteString(fmt.Sprintf("Grammar Issues Detected: %s\n", YesNo(resp.GrammarIssues.Detected)))
	output.WriteString(fmt.Sprintf("Explanation: %s\n", resp.GrammarIssues.Explanation))
	output.WriteString(fmt.Sprintf("Corrected Sentence: %s\n", resp.GrammarIssues.CorrectedSentence))
	output.WriteString(fmt.Sprintf("Improved Writing Suggestion: %s\n", resp.ImprovedSuggestion))

	if len(resp.Tokens) > 0 {
		output.WriteString("\n")
		output.WriteString(rf.FormatTokens(resp.Tokens))
	}

	return output.String()
}

// FormatTokens lays tokens out in aligned columns.
func (rf *ReportFormatter) FormatTokens(tokens []models.Token) string {
	wordW, posW, depW := len("WORD"), len("POS"), len("DEPENDENCY")
	for _, t := range tokens {
		wordW = max(wordW, len(t.Word))
		posW = max(posW, len(t.PartOfSpeech))
		depW = max(depW, len(t.Dependency))
	}

	var output strings.Builder
	row := func(word, pos, dep, role string) {
		output.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %s\n", wordW, word, posW, pos, depW, dep, role))
	}
	row("WORD", "POS", "DEPENDENCY", "ROLE")
	for _, t := range tokens {
		row(t.Word, t.PartOfSpeech, t.Dependency, string(t.Role))
	}
	return output.String()
}

// YesNo renders a boolean the way the report does.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
