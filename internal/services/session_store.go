package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rahul4469/linguist-ai/internal/models"
)

const (
	// DefaultSessionDuration is how long an idle session is kept (24 hours)
	DefaultSessionDuration = 24 * time.Hour

	// DefaultMaxSessions bounds the store when MaxSessions is unset.
	DefaultMaxSessions = 10000
)

// SessionStore keeps one AnalysisSession per browser, in memory only.
type SessionStore struct {
	// MaxSessions caps how many sessions are held. Set it before the store
	// is shared; zero means DefaultMaxSessions.
	MaxSessions int

	analyzer Analyzer
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*AnalysisSession
}

func NewSessionStore(analyzer Analyzer, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		analyzer: analyzer,
		logger:   logger,
		sessions: make(map[string]*AnalysisSession),
	}
}

// Create registers a new Idle session under a fresh random id. When the
// store is full the least recently active session without a request in
// flight is evicted first.
func (ss *SessionStore) Create() *AnalysisSession {
	id := uuid.NewString()
	session := NewAnalysisSession(id, ss.analyzer, ss.logger)

	ss.mu.Lock()
	if len(ss.sessions) >= ss.maxSessions() {
		if evicted := ss.evictOldestLocked(); evicted != "" {
			ss.logger.Debug("session_evicted", "session", evicted)
		}
	}
	ss.sessions[id] = session
	ss.mu.Unlock()
	return session
}

func (ss *SessionStore) maxSessions() int {
	if ss.MaxSessions > 0 {
		return ss.MaxSessions
	}
	return DefaultMaxSessions
}

// evictOldestLocked removes the least recently active non-Loading session
// and returns its id, or "" when every session is Loading. ss.mu must be held.
func (ss *SessionStore) evictOldestLocked() string {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, session := range ss.sessions {
		if models.IsLoading(session.State()) {
			continue
		}
		at := session.LastActive()
		if oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	if oldestID != "" {
		delete(ss.sessions, oldestID)
	}
	return oldestID
}

// Get looks up a session by id.
func (ss *SessionStore) Get(id string) (*AnalysisSession, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, ok := ss.sessions[id]
	return session, ok
}

func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Sweep drops sessions idle for longer than maxIdle. Sessions with a request
// in flight are always kept. It returns how many were removed.
func (ss *SessionStore) Sweep(now time.Time, maxIdle time.Duration) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if models.IsLoading(session.State()) {
			continue
		}
		if now.Sub(session.LastActive()) > maxIdle {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps every interval until ctx is done.
func (ss *SessionStore) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxIdle <= 0 {
		maxIdle = DefaultSessionDuration
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := ss.Sweep(now, maxIdle); n > 0 {
					ss.logger.Info("sessions_swept", "removed", n, "remaining", ss.Len())
				}
			}
		}
	}()
}
