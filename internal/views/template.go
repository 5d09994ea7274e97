package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
)

// TemplateFS is the filesystem templates are parsed from. main points it at
// the embedded templates package; tests use an in-memory FS.
var TemplateFS fs.FS

// Template wraps a parsed template with helper methods for rendering.
type Template struct {
	tmpl *template.Template
}

// TemplateData is the standard data structure passed to all templates.
// It contains common fields that every page might need.
type TemplateData struct {
	// CSRF token for forms
	CSRFToken string

	// Flash messages
	Error   string
	Success string
	Warning string
	Info    string

	// Page-specific data
	Data interface{}

	// Additional metadata
	Title       string
	Description string

	// Seconds until the browser reloads the page; 0 disables.
	RefreshSeconds int

	// Request info (useful for active nav highlighting)
	CurrentPath string

	// Environment
	IsDevelopment bool
}

// DefaultFuncMap returns the default template functions available in all templates.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Status/role styling
		"statusClass": statusClass,
		"roleClass":   roleClass,
		"yesNo":       services.YesNo,

		// Default value
		"default": defaultValue,
	}
}

// ParseFS parses templates from TemplateFS.
// It automatically includes the base layout and any partials.
//
// Usage:
//
//	tmpl, err := views.ParseFS("pages/analyze.gohtml")
//	// This will parse:
//	// - layouts/base.gohtml
//	// - partials/*.gohtml
//	// - pages/analyze.gohtml
func ParseFS(patterns ...string) (*Template, error) {
	if TemplateFS == nil {
		return nil, fmt.Errorf("views: TemplateFS is not set")
	}

	tmpl := template.New("").Funcs(DefaultFuncMap())

	baseContent, err := fs.ReadFile(TemplateFS, "layouts/base.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to read base template: %w", err)
	}
	tmpl, err = tmpl.Parse(string(baseContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	// Partials define their own names with {{define "name"}}
	partialMatches, err := fs.Glob(TemplateFS, "partials/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}
	for _, match := range partialMatches {
		content, err := fs.ReadFile(TemplateFS, match)
		if err != nil {
			return nil, fmt.Errorf("failed to read partial %s: %w", match, err)
		}
		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse partial %s: %w", match, err)
		}
	}

	// Pages define {{define "content"}}
	for _, pattern := range patterns {
		content, err := fs.ReadFile(TemplateFS, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", pattern, err)
		}
		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pattern, err)
		}
	}

	return &Template{tmpl: tmpl}, nil
}

// Execute renders the template to the given writer with the provided data.
func (t *Template) Execute(w io.Writer, data *TemplateData) error {
	return t.tmpl.ExecuteTemplate(w, "base", data)
}

// ExecuteHTTP renders the template as an HTTP response.
func (t *Template) ExecuteHTTP(w http.ResponseWriter, r *http.Request, data *TemplateData) {
	t.ExecuteHTTPWithStatus(w, r, http.StatusOK, data)
}

// ExecuteHTTPWithStatus renders the template with a custom HTTP status code.
func (t *Template) ExecuteHTTPWithStatus(w http.ResponseWriter, r *http.Request, status int, data *TemplateData) {
	if data != nil {
		data.CurrentPath = r.URL.Path
	}

	// Render to buffer first to catch errors
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, data); err != nil {
		slog.Error("template_execution_failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Template function implementations

func statusClass(status models.Status) string {
	switch status {
	case models.StatusLoading:
		return "bg-blue-100 text-blue-800"
	case models.StatusSuccess:
		return "bg-green-100 text-green-800"
	case models.StatusError:
		return "bg-red-100 text-red-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

func roleClass(role models.Role) string {
	switch role {
	case models.RoleSubject:
		return "bg-blue-100 text-blue-800 border-blue-200"
	case models.RoleVerb:
		return "bg-green-100 text-green-800 border-green-200"
	case models.RoleObject:
		return "bg-purple-100 text-purple-800 border-purple-200"
	case models.RoleModifier:
		return "bg-orange-100 text-orange-800 border-orange-200"
	default:
		return "bg-gray-100 text-gray-800 border-gray-200"
	}
}

func defaultValue(value, defaultVal interface{}) interface{} {
	if value == nil || value == "" || value == 0 {
		return defaultVal
	}
	return value
}
