package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/rahul4469/linguist-ai/internal/models"
	"github.com/rahul4469/linguist-ai/internal/services"
)

func init() {
	color.NoColor = true
}

// scriptedAnalyzer returns its results in order and records the inputs.
type scriptedAnalyzer struct {
	mu      sync.Mutex
	results []error
	inputs  []string
}

func (a *scriptedAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs = append(a.inputs, text)

	var err error
	if len(a.results) > 0 {
		err, a.results = a.results[0], a.results[1:]
	}
	if err != nil {
		return nil, err
	}
	return &models.AnalysisResponse{
		OriginalSentence: text,
		Tokens:           []models.Token{{Word: "Hi", PartOfSpeech: "INTJ", Dependency: "ROOT", Role: models.RoleOther}},
	}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAnalyze_Text(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze(context.Background(), &out, &scriptedAnalyzer{}, discard(), "Hi", false)
	if err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	if !strings.Contains(out.String(), "Original Sentence: Hi") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunAnalyze_JSON(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze(context.Background(), &out, &scriptedAnalyzer{}, discard(), "Hi", true)
	if err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	var got jsonState
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.Status != models.StatusSuccess || got.Result == nil || got.Result.OriginalSentence != "Hi" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestRunAnalyze_Failure(t *testing.T) {
	var out bytes.Buffer
	a := &scriptedAnalyzer{results: []error{errors.New("API key not valid")}}
	err := runAnalyze(context.Background(), &out, a, discard(), "Hi", false)
	if !errors.Is(err, errAnalysisFailed) {
		t.Fatalf("err = %v, want errAnalysisFailed", err)
	}
	if !strings.Contains(out.String(), "API key not valid") {
		t.Fatalf("error message not printed:\n%s", out.String())
	}
}

func TestRunAnalyze_Blank(t *testing.T) {
	var out bytes.Buffer
	a := &scriptedAnalyzer{}
	err := runAnalyze(context.Background(), &out, a, discard(), "  \n", false)
	if !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if len(a.inputs) != 0 {
		t.Fatalf("blank text reached the analyzer")
	}
	if !strings.Contains(out.String(), "Enter a sentence") {
		t.Fatalf("expected guidance, got %q", out.String())
	}
}

func TestRunREPL(t *testing.T) {
	a := &scriptedAnalyzer{results: []error{errors.New("temporarily unavailable"), nil}}
	session := services.NewAnalysisSession("test", a, discard())

	in := strings.NewReader("\n   \n:retry\nThe dog bark.\n:retry\n:quit\nnever read\n")
	var out bytes.Buffer
	if err := runREPL(context.Background(), in, &out, session); err != nil {
		t.Fatalf("runREPL: %v", err)
	}

	want := []string{"The dog bark.", "The dog bark."}
	if len(a.inputs) != len(want) {
		t.Fatalf("inputs = %q, want %q", a.inputs, want)
	}
	for i := range want {
		if a.inputs[i] != want[i] {
			t.Fatalf("inputs = %q, want %q", a.inputs, want)
		}
	}

	text := out.String()
	if strings.Count(text, "Nothing to retry.") != 1 {
		t.Errorf("expected one refused retry:\n%s", text)
	}
	if !strings.Contains(text, "temporarily unavailable") {
		t.Errorf("error not rendered:\n%s", text)
	}
	if _, ok := session.State().(models.StateSuccess); !ok {
		t.Errorf("final state = %T", session.State())
	}
}

func TestRunREPL_EOF(t *testing.T) {
	session := services.NewAnalysisSession("test", &scriptedAnalyzer{}, discard())
	if err := runREPL(context.Background(), strings.NewReader(""), io.Discard, session); err != nil {
		t.Fatalf("runREPL: %v", err)
	}
}

func TestGenKeyCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"genkey"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("genkey: %v", err)
	}
	if key := strings.TrimSpace(out.String()); len(key) < 32 {
		t.Fatalf("key too short: %q", key)
	}
}
