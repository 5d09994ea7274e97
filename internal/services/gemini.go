package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rahul4469/linguist-ai/internal/models"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-3-pro-preview"
	defaultGeminiTimeout = 60 * time.Second

	// maxErrorBody caps how much of a failed reply ends up in the error message.
	maxErrorBody = 512
)

const systemInstruction = `You are a world-class NLP-based writing assistant.
Perform deep syntactic analysis including tokenization, POS tagging, and dependency identification (Subject, Verb, Object, Modifiers).
Evaluate subject-verb agreement, tense, missing components, and word order.
Propose an improved, more natural rewrite of the text.

Your response MUST follow the specified JSON schema strictly.`

// Analyzer turns text into a structured analysis.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResponse, error)
}

// GeminiOptions configures a GeminiService. APIKey is passed explicitly; the
// service never reads the environment.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiService calls the Gemini generateContent endpoint with a response schema.
// It holds no per-request state and is safe for concurrent use.
type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiService creates a client; zero-valued options fall back to defaults.
func NewGeminiService(opts GeminiOptions) *GeminiService {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}
	return &GeminiService{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the model name requests are sent to.
func (s *GeminiService) Model() string {
	return s.model
}

// Request to Gemini
type generateRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema"`
}

// Response from Gemini
type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Analyze sends text for analysis. It makes exactly one attempt. Failures of
// the round trip or the reply are *models.AnalysisError.
func (s *GeminiService) Analyze(ctx context.Context, text string) (*models.AnalysisResponse, error) {
	reqBody := generateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		},
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: buildPrompt(text)}},
			},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   AnalysisSchema(),
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, url.PathEscape(s.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, models.NewTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, models.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewServiceError(resp.StatusCode, errorDetail(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, models.NewShapeError("decode envelope: " + err.Error())
	}

	payload, err := parsed.text()
	if err != nil {
		return nil, err
	}

	return models.DecodeAnalysisResponse([]byte(payload))
}

// text joins the parts of the first candidate.
func (r *generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", models.NewShapeError("prompt blocked: " + r.PromptFeedback.BlockReason)
		}
		return "", models.NewShapeError("no candidates in response")
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", models.NewShapeError("empty candidate text (finish reason " + r.Candidates[0].FinishReason + ")")
	}
	return sb.String(), nil
}

func buildPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following English text for syntactic structure and grammatical correctness: "%s"`, text)
}

// errorDetail pulls the service's own message out of an error reply, falling
// back to the (truncated) raw body.
func errorDetail(body []byte) string {
	var eb geminiErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorBody {
		detail = detail[:maxErrorBody] + "..."
	}
	return detail
}
