package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rahul4469/linguist-ai/internal/models"
)

// AnalysisSession drives one user's analysis lifecycle:
//
//	Idle --submit--> Loading --resolved--> Success
//	                         --rejected--> Error --retry--> Loading
//
// At most one request is in flight. Submissions while Loading, or with blank
// text, are ignored.
type AnalysisSession struct {
	ID string

	analyzer Analyzer
	logger   *slog.Logger

	mu         sync.Mutex
	input      string
	state      models.RequestState
	done       chan struct{}
	lastActive time.Time
	now        func() time.Time
}

// NewAnalysisSession creates a session in the Idle state.
func NewAnalysisSession(id string, analyzer Analyzer, logger *slog.Logger) *AnalysisSession {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AnalysisSession{
		ID:       id,
		analyzer: analyzer,
		logger:   logger,
		state:    models.StateIdle{},
		now:      time.Now,
	}
	s.lastActive = s.now()
	return s
}

// Submit starts an analysis of text. It reports whether a request was started.
// The request runs detached from ctx's cancellation; once started it always
// settles into Success or Error.
func (s *AnalysisSession) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	s.lastActive = s.now()
	if models.IsLoading(s.state) {
		s.mu.Unlock()
		return false
	}
	done := make(chan struct{})
	s.input = text
	s.state = models.StateLoading{Input: text}
	s.done = done
	s.mu.Unlock()

	s.logger.Debug("analysis_started", "session", s.ID, "chars", len(text))
	go s.run(context.WithoutCancel(ctx), text, done)
	return true
}

// Retry re-submits the held input. Only valid from the Error state.
func (s *AnalysisSession) Retry(ctx context.Context) bool {
	s.mu.Lock()
	_, failed := s.state.(models.StateError)
	input := s.input
	s.mu.Unlock()

	if !failed {
		return false
	}
	return s.Submit(ctx, input)
}

func (s *AnalysisSession) run(ctx context.Context, text string, done chan struct{}) {
	started := s.now()
	result, err := s.analyzer.Analyze(ctx, text)

	var next models.RequestState
	if err != nil {
		next = models.StateError{Message: ErrorMessage(err)}
		attrs := []any{"session", s.ID, "error", err, "elapsed", time.Since(started).String()}
		if cause := errors.Unwrap(err); cause != nil {
			attrs = append(attrs, "cause", cause)
		}
		s.logger.Warn("analysis_failed", attrs...)
	} else if result == nil {
		next = models.StateError{Message: models.MsgMalformedResponse}
		s.logger.Warn("analysis_failed", "session", s.ID, "error", "nil result")
	} else {
		next = models.StateSuccess{Result: result}
		s.logger.Info("analysis_completed", "session", s.ID, "tokens", len(result.Tokens), "elapsed", time.Since(started).String())
	}

	s.mu.Lock()
	s.state = next
	s.done = nil
	s.lastActive = s.now()
	s.mu.Unlock()
	close(done)
}

// State returns the current state.
func (s *AnalysisSession) State() models.RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the most recently submitted text.
func (s *AnalysisSession) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Snapshot returns input and state read together.
func (s *AnalysisSession) Snapshot() (string, models.RequestState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input, s.state
}

// Wait blocks until no request is in flight or ctx is done, then returns the
// state at that moment.
func (s *AnalysisSession) Wait(ctx context.Context) models.RequestState {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return s.State()
}

// LastActive returns when the session was last submitted to or settled.
func (s *AnalysisSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// ErrorMessage derives the text shown for a failed request.
func ErrorMessage(err error) string {
	if err == nil {
		return models.MsgUnexpectedError
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return models.MsgUnexpectedError
}
