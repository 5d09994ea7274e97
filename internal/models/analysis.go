package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the coarse grammatical function assigned to a token.
type Role string

const (
	RoleSubject  Role = "Subject"
	RoleVerb     Role = "Verb"
	RoleObject   Role = "Object"
	RoleModifier Role = "Modifier"
	RoleOther    Role = "Other"
)

// Roles lists every accepted role in schema order.
var Roles = []Role{RoleSubject, RoleVerb, RoleObject, RoleModifier, RoleOther}

func (r Role) Valid() bool {
	switch r {
	case RoleSubject, RoleVerb, RoleObject, RoleModifier, RoleOther:
		return true
	default:
		return false
	}
}

// Token is a single word annotated by the inference service.
type Token struct {
	Word         string `json:"word"`
	PartOfSpeech string `json:"pos"`
	Dependency   string `json:"dependency"`
	Role         Role   `json:"role"`
}

type GrammarIssue struct {
	Detected          bool   `json:"detected"`
	Explanation       string `json:"explanation"`
	CorrectedSentence string `json:"correctedSentence"`
}

// HasCorrection reports whether CorrectedSentence should be shown.
// An empty correction, or one attached to a clean sentence, means "none".
func (g GrammarIssue) HasCorrection() bool {
	return g.Detected && g.CorrectedSentence != ""
}

// AnalysisResponse is the full structured analysis for one submitted text.
type AnalysisResponse struct {
	OriginalSentence   string       `json:"originalSentence"`
	Tokens             []Token      `json:"tokens"`
	SyntacticSummary   string       `json:"syntacticSummary"`
	GrammarIssues      GrammarIssue `json:"grammarIssues"`
	ImprovedSuggestion string       `json:"improvedSuggestion"`
}

// RoleCounts tallies tokens per role.
func (a *AnalysisResponse) RoleCounts() map[Role]int {
	counts := make(map[Role]int, len(Roles))
	for _, t := range a.Tokens {
		counts[t.Role]++
	}
	return counts
}

// ============================================
// WIRE DECODING
// ============================================

// The wire structs use pointers so that a missing or null field can be told
// apart from a zero value.

type wireToken struct {
	Word       *string `json:"word"`
	POS        *string `json:"pos"`
	Dependency *string `json:"dependency"`
	Role       *string `json:"role"`
}

type wireGrammarIssue struct {
	Detected          *bool   `json:"detected"`
	Explanation       *string `json:"explanation"`
	CorrectedSentence *string `json:"correctedSentence"`
}

type wireAnalysis struct {
	OriginalSentence   *string           `json:"originalSentence"`
	Tokens             *[]*wireToken     `json:"tokens"`
	SyntacticSummary   *string           `json:"syntacticSummary"`
	GrammarIssues      *wireGrammarIssue `json:"grammarIssues"`
	ImprovedSuggestion *string           `json:"improvedSuggestion"`
}

// DecodeAnalysisResponse parses a service payload and checks it against the
// response schema: every required field present and non-null, every role in
// the enum. Any violation yields a response_shape *AnalysisError.
func DecodeAnalysisResponse(data []byte) (*AnalysisResponse, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, NewShapeError("empty payload")
	}

	var w wireAnalysis
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, NewShapeError(err.Error())
	}

	var missing []string
	require := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	require(w.OriginalSentence != nil, "originalSentence")
	require(w.Tokens != nil, "tokens")
	require(w.SyntacticSummary != nil, "syntacticSummary")
	require(w.GrammarIssues != nil, "grammarIssues")
	require(w.ImprovedSuggestion != nil, "improvedSuggestion")
	if w.GrammarIssues != nil {
		require(w.GrammarIssues.Detected != nil, "grammarIssues.detected")
		require(w.GrammarIssues.Explanation != nil, "grammarIssues.explanation")
		require(w.GrammarIssues.CorrectedSentence != nil, "grammarIssues.correctedSentence")
	}
	if w.Tokens != nil {
		for i, t := range *w.Tokens {
			if t == nil {
				missing = append(missing, fmt.Sprintf("tokens[%d]", i))
				continue
			}
			require(t.Word != nil, fmt.Sprintf("tokens[%d].word", i))
			require(t.POS != nil, fmt.Sprintf("tokens[%d].pos", i))
			require(t.Dependency != nil, fmt.Sprintf("tokens[%d].dependency", i))
			require(t.Role != nil, fmt.Sprintf("tokens[%d].role", i))
		}
	}
	if len(missing) > 0 {
		return nil, NewShapeError("missing required fields: " + strings.Join(missing, ", "))
	}

	tokens := make([]Token, 0, len(*w.Tokens))
	for i, t := range *w.Tokens {
		role := Role(*t.Role)
		if !role.Valid() {
			return nil, NewShapeError(fmt.Sprintf("tokens[%d].role: unknown role %q", i, *t.Role))
		}
		tokens = append(tokens, Token{
			Word:         *t.Word,
			PartOfSpeech: *t.POS,
			Dependency:   *t.Dependency,
			Role:         role,
		})
	}

	return &AnalysisResponse{
		OriginalSentence: *w.OriginalSentence,
		Tokens:           tokens,
		SyntacticSummary: *w.SyntacticSummary,
		GrammarIssues: GrammarIssue{
			Detected:          *w.GrammarIssues.Detected,
			Explanation:       *w.GrammarIssues.Explanation,
			CorrectedSentence: *w.GrammarIssues.CorrectedSentence,
		},
		ImprovedSuggestion: *w.ImprovedSuggestion,
	}, nil
}
