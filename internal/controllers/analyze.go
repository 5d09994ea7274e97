package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/rahul4469/linguist-ai/internal/middleware"
	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/rahul4469/linguist-ai/internal/views"
)

// loadingRefreshSeconds is how often the page polls while a request is in flight.
const loadingRefreshSeconds = 2

// maxJSONBody caps the body accepted by the JSON API.
const maxJSONBody = 64 << 10

// AnalyzeController serves the analysis page and its JSON twin.
type AnalyzeController struct {
	templates AnalyzeTemplates
	formatter *services.ReportFormatter
	logger    *slog.Logger
	isDev     bool
}

// AnalyzeTemplates holds the templates for analysis pages.
type AnalyzeTemplates struct {
	Page *views.Template
}

// NewAnalyzeController creates a new AnalyzeController.
func NewAnalyzeController(templates AnalyzeTemplates, logger *slog.Logger, isDev bool) *AnalyzeController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeController{
		templates: templates,
		formatter: services.NewReportFormatter(),
		logger:    logger,
		isDev:     isDev,
	}
}

// AnalyzePageData holds data for the analyze page template.
type AnalyzePageData struct {
	State    views.StateView
	Features []Feature
}

// Feature is one of the cards shown before the first analysis.
type Feature struct {
	Title       string
	Description string
}

var idleFeatures = []Feature{
	{
		Title:       "Grammar Check",
		Description: "Subject-verb agreement and tense usage verification.",
	},
	{
		Title:       "POS Tagging",
		Description: "Precise categorization of every word in your sentence.",
	},
	{
		Title:       "Syntactic Insights",
		Description: "Mapping relationships between subjects, verbs, and objects.",
	},
}

// GetAnalyze renders the page for the session's current state.
func (c *AnalyzeController) GetAnalyze(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)
	input, state := session.Snapshot()
	view := views.NewStateView(input, state)

	data := &views.TemplateData{
		Title:         "LinguistAI - Syntactic Analysis",
		Description:   "Sentence structure, part-of-speech tagging and grammar checks.",
		CSRFToken:     csrf.Token(r),
		IsDevelopment: c.isDev,
		Data: AnalyzePageData{
			State:    view,
			Features: idleFeatures,
		},
	}
	if view.IsLoading() {
		data.RefreshSeconds = loadingRefreshSeconds
	}
	if r.URL.Query().Get("msg") == "busy" {
		data.Info = "An analysis is already running. Results will appear here when it finishes."
	}

	c.templates.Page.ExecuteHTTP(w, r, data)
}

// PostAnalyze submits the form text. Blank text and submits while loading
// leave the state untouched.
func (c *AnalyzeController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	text := r.FormValue("text")
	if !session.Submit(r.Context(), text) && models.IsLoading(session.State()) {
		http.Redirect(w, r, "/?msg=busy", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// PostRetry re-submits the last input after a failure.
func (c *AnalyzeController) PostRetry(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)
	session.Retry(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetReport serves the raw output report as plain text.
func (c *AnalyzeController) GetReport(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)
	success, ok := session.State().(models.StateSuccess)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, c.formatter.Format(success.Result))
}

// StatePayload is the JSON form of a session's state.
type StatePayload struct {
	Status models.Status            `json:"status"`
	Input  string                   `json:"input"`
	Result *models.AnalysisResponse `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// NewStatePayload flattens input and state for the JSON API.
func NewStatePayload(input string, state models.RequestState) StatePayload {
	view := views.NewStateView(input, state)
	return StatePayload{
		Status: view.Status,
		Input:  view.Input,
		Result: view.Result,
		Error:  view.Message,
	}
}

// GetState returns the session's state as JSON. The CSRF token needed for
// POST /api/analyze is sent in the X-CSRF-Token header.
func (c *AnalyzeController) GetState(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)
	w.Header().Set("X-CSRF-Token", csrf.Token(r))
	c.writeJSON(w, http.StatusOK, NewStatePayload(session.Snapshot()))
}

type analyzeRequest struct {
	Text string `json:"text"`
	Wait bool   `json:"wait"`
}

type analyzeResponse struct {
	Accepted bool         `json:"accepted"`
	State    StatePayload `json:"state"`
}

// PostAPIAnalyze is the JSON submit. With wait set it blocks until the
// request settles or the client goes away.
func (c *AnalyzeController) PostAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustCurrentSession(r)

	var req analyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	accepted := session.Submit(r.Context(), req.Text)
	status := http.StatusOK
	if accepted {
		if req.Wait {
			session.Wait(r.Context())
		} else {
			status = http.StatusAccepted
		}
	}

	c.writeJSON(w, status, analyzeResponse{
		Accepted: accepted,
		State:    NewStatePayload(session.Snapshot()),
	})
}

func (c *AnalyzeController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Error("json_encode_failed", "error", err)
	}
}

// HealthCheck returns a simple health status for monitoring.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
