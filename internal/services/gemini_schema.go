package services

import "github.com/rahul4469/linguist-ai/internal/models"

// Schema is the subset of the Gemini response-schema object we send.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

const (
	schemaObject  = "OBJECT"
	schemaArray   = "ARRAY"
	schemaString  = "STRING"
	schemaBoolean = "BOOLEAN"
)

func roleEnum() []string {
	out := make([]string, len(models.Roles))
	for i, r := range models.Roles {
		out[i] = string(r)
	}
	return out
}

// AnalysisSchema mirrors models.AnalysisResponse field for field.
// DecodeAnalysisResponse enforces the same constraints on the way back in.
func AnalysisSchema() *Schema {
	return &Schema{
		Type: schemaObject,
		Properties: map[string]*Schema{
			"originalSentence": {Type: schemaString},
			"tokens": {
				Type: schemaArray,
				Items: &Schema{
					Type: schemaObject,
					Properties: map[string]*Schema{
						"word":       {Type: schemaString},
						"pos":        {Type: schemaString, Description: "Part of speech (e.g., Noun, Verb, Adjective)"},
						"dependency": {Type: schemaString, Description: "The grammatical relation"},
						"role":       {Type: schemaString, Enum: roleEnum()},
					},
					Required: []string{"word", "pos", "dependency", "role"},
				},
			},
			"syntacticSummary": {Type: schemaString},
			"grammarIssues": {
				Type: schemaObject,
				Properties: map[string]*Schema{
					"detected":          {Type: schemaBoolean},
					"explanation":       {Type: schemaString},
					"correctedSentence": {Type: schemaString},
				},
				Required: []string{"detected", "explanation", "correctedSentence"},
			},
			"improvedSuggestion": {Type: schemaString},
		},
		Required: []string{"originalSentence", "tokens", "syntacticSummary", "grammarIssues", "improvedSuggestion"},
	}
}
