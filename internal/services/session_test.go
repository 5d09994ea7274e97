package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rahul4469/linguist-ai/internal/models"
)

// --- Mocks ---

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	ctxErrs []error
	release chan struct{}
	result  *models.AnalysisResponse
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	release := f.release
	result, err := f.result, f.err
	f.mu.Unlock()

	if release != nil {
		<-release
	}

	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()
	return result, err
}

func (f *fakeAnalyzer) set(result *models.AnalysisResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result, f.err = result, err
}

func (f *fakeAnalyzer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func catResult() *models.AnalysisResponse {
	return &models.AnalysisResponse{
		OriginalSentence: "The cat sit on the mat.",
		Tokens: []models.Token{
			{Word: "cat", PartOfSpeech: "Noun", Dependency: "nsubj", Role: models.RoleSubject},
		},
		SyntacticSummary: "Simple sentence.",
		GrammarIssues: models.GrammarIssue{
			Detected:          true,
			Explanation:       "Subject-verb agreement error: 'cat' requires 'sits'.",
			CorrectedSentence: "The cat sits on the mat.",
		},
		ImprovedSuggestion: "The cat is sitting on the mat.",
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// --- Tests ---

func TestAnalysisSession_StartsIdle(t *testing.T) {
	s := NewAnalysisSession("s1", &fakeAnalyzer{}, discardLogger())
	if _, ok := s.State().(models.StateIdle); !ok {
		t.Fatalf("expected Idle, got %T", s.State())
	}
	if s.Input() != "" {
		t.Fatalf("expected no input")
	}
}

func TestAnalysisSession_SubmitSuccess(t *testing.T) {
	want := catResult()
	fa := &fakeAnalyzer{release: make(chan struct{}), result: want}
	s := NewAnalysisSession("s1", fa, discardLogger())

	if !s.Submit(context.Background(), "The cat sit on the mat.") {
		t.Fatalf("expected submit to be accepted")
	}
	loading, ok := s.State().(models.StateLoading)
	if !ok {
		t.Fatalf("expected Loading, got %T", s.State())
	}
	if loading.Input != "The cat sit on the mat." {
		t.Fatalf("loading input mismatch: %q", loading.Input)
	}

	// A second submit while loading is ignored.
	if s.Submit(context.Background(), "Another sentence.") {
		t.Fatalf("expected submit while loading to be rejected")
	}

	close(fa.release)
	state := s.Wait(waitCtx(t))

	success, ok := state.(models.StateSuccess)
	if !ok {
		t.Fatalf("expected Success, got %T", state)
	}
	if success.Result != want {
		t.Fatalf("expected the exact analyzer result to be held")
	}
	if calls := fa.Calls(); len(calls) != 1 || calls[0] != "The cat sit on the mat." {
		t.Fatalf("expected exactly one call with the input, got %v", calls)
	}
}

func TestAnalysisSession_BlankInputIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Spaces", "   "},
		{"Whitespace mix", "\n\t "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{result: catResult()}
			s := NewAnalysisSession("s1", fa, discardLogger())
			s.Submit(context.Background(), "The cat sit on the mat.")
			before := s.Wait(waitCtx(t))

			if s.Submit(context.Background(), tt.input) {
				t.Fatalf("expected blank submit to be rejected")
			}
			if s.State() != before {
				t.Fatalf("state changed on blank submit")
			}
			if s.Input() != "The cat sit on the mat." {
				t.Fatalf("input changed on blank submit: %q", s.Input())
			}
			if len(fa.Calls()) != 1 {
				t.Fatalf("blank submit reached the analyzer")
			}
		})
	}
}

func TestAnalysisSession_ErrorClearsPreviousResult(t *testing.T) {
	fa := &fakeAnalyzer{result: catResult()}
	s := NewAnalysisSession("s1", fa, discardLogger())

	s.Submit(context.Background(), "The cat sit on the mat.")
	if _, ok := s.Wait(waitCtx(t)).(models.StateSuccess); !ok {
		t.Fatalf("expected Success first")
	}

	fa.set(nil, models.NewServiceError(500, "internal"))
	if !s.Submit(context.Background(), "Second try.") {
		t.Fatalf("expected submit from Success to be accepted")
	}
	state := s.Wait(waitCtx(t))
	failed, ok := state.(models.StateError)
	if !ok {
		t.Fatalf("expected Error, got %T", state)
	}
	if failed.Message != "gemini API error (status 500): internal" {
		t.Fatalf("unexpected message %q", failed.Message)
	}
}

func TestAnalysisSession_MalformedResponseMessage(t *testing.T) {
	_, shapeErr := models.DecodeAnalysisResponse([]byte("not json"))
	fa := &fakeAnalyzer{err: shapeErr}
	s := NewAnalysisSession("s1", fa, discardLogger())

	s.Submit(context.Background(), "Hello there.")
	state := s.Wait(waitCtx(t))
	failed, ok := state.(models.StateError)
	if !ok {
		t.Fatalf("expected Error, got %T", state)
	}
	if failed.Message != "Failed to analyze text structure" {
		t.Fatalf("expected fixed message, got %q", failed.Message)
	}
}

func TestAnalysisSession_LogsShapeErrorCause(t *testing.T) {
	_, shapeErr := models.DecodeAnalysisResponse([]byte(`{"tokens": []}`))
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewAnalysisSession("s1", &fakeAnalyzer{err: shapeErr}, logger)

	s.Submit(context.Background(), "Hello there.")
	s.Wait(waitCtx(t))

	out := buf.String()
	if !strings.Contains(out, "analysis_failed") {
		t.Fatalf("expected failure log, got %q", out)
	}
	if !strings.Contains(out, "cause=") || !strings.Contains(out, "missing required fields") {
		t.Fatalf("expected parser detail in log, got %q", out)
	}
}

func TestAnalysisSession_RetryReusesInput(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("timeout")}
	s := NewAnalysisSession("s1", fa, discardLogger())

	if s.Retry(context.Background()) {
		t.Fatalf("retry from Idle must be rejected")
	}

	s.Submit(context.Background(), "The cat sit on the mat.")
	state := s.Wait(waitCtx(t))
	failed, ok := state.(models.StateError)
	if !ok || failed.Message != "timeout" {
		t.Fatalf("expected Error(timeout), got %#v", state)
	}

	fa.set(catResult(), nil)
	if !s.Retry(context.Background()) {
		t.Fatalf("expected retry from Error to be accepted")
	}
	if _, ok := s.Wait(waitCtx(t)).(models.StateSuccess); !ok {
		t.Fatalf("expected Success after retry")
	}

	calls := fa.Calls()
	if len(calls) != 2 || calls[0] != calls[1] {
		t.Fatalf("retry should re-issue the same input, got %v", calls)
	}
	if s.Retry(context.Background()) {
		t.Fatalf("retry from Success must be rejected")
	}
}

func TestAnalysisSession_NotCanceledWithCaller(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{}), result: catResult()}
	s := NewAnalysisSession("s1", fa, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Submit(ctx, "The cat sit on the mat.")
	cancel()
	close(fa.release)

	if _, ok := s.Wait(waitCtx(t)).(models.StateSuccess); !ok {
		t.Fatalf("expected request to run to completion")
	}
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.ctxErrs[0] != nil {
		t.Fatalf("analyzer saw a canceled context: %v", fa.ctxErrs[0])
	}
}

func TestAnalysisSession_ConcurrentSubmitsSingleFlight(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{}), result: catResult()}
	s := NewAnalysisSession("s1", fa, discardLogger())

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Submit(context.Background(), "Race me.") {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(fa.release)
	s.Wait(waitCtx(t))

	if accepted != 1 {
		t.Fatalf("expected exactly one accepted submit, got %d", accepted)
	}
	if n := len(fa.Calls()); n != 1 {
		t.Fatalf("expected one analyzer call, got %d", n)
	}
}

func TestAnalysisSession_WaitHonorsContext(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{})}
	defer close(fa.release)
	s := NewAnalysisSession("s1", fa, discardLogger())
	s.Submit(context.Background(), "Slow one.")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := s.Wait(ctx).(models.StateLoading); !ok {
		t.Fatalf("expected Loading after wait timeout")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Plain error", errors.New("timeout"), "timeout"},
		{"Empty message", errors.New(""), models.MsgUnexpectedError},
		{"Nil", nil, models.MsgUnexpectedError},
		{"Wrapped local error", fmt.Errorf("failed to marshal request: %w", errors.New("bad value")), "failed to marshal request: bad value"},
		{"Analysis error", models.NewServiceError(401, "bad key"), "gemini API error (status 401): bad key"},
	}
	for _, tt := range tests {
		if got := ErrorMessage(tt.err); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}
