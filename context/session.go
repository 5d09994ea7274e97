package context

import (
	"context"

	"github.com/rahul4469/linguist-ai/internal/services"
)

type contextkey string

const (
	sessionKey contextkey = "analysis_session"
)

// ContextSetSession binds the browser's analysis session to ctx.
func ContextSetSession(ctx context.Context, session *services.AnalysisSession) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ContextGetSession retrieves the analysis session from request context.
// Returns nil if no session is set.
func ContextGetSession(ctx context.Context) *services.AnalysisSession {
	val := ctx.Value(sessionKey)
	session, ok := val.(*services.AnalysisSession)
	if !ok {
		return nil
	}
	return session
}
