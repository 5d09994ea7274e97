package middleware

import (
	"log/slog"
	"net/http"
	"time"

	localcontext "github.com/rahul4469/linguist-ai/context"
	"github.com/rahul4469/linguist-ai/internal/crypto"
	"github.com/rahul4469/linguist-ai/internal/services"
)

type SessionMiddleware struct {
	store      *services.SessionStore
	encryptor  *crypto.Encryptor
	cookieName string
	maxAge     time.Duration
	secure     bool
	logger     *slog.Logger
}

func NewSessionMiddleware(store *services.SessionStore, encryptor *crypto.Encryptor, cookieName string, maxAge time.Duration, secure bool, logger *slog.Logger) *SessionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionMiddleware{
		store:      store,
		encryptor:  encryptor,
		cookieName: cookieName,
		maxAge:     maxAge,
		secure:     secure,
		logger:     logger,
	}
}

// SetSession loads the browser's analysis session from the encrypted cookie,
// creating a fresh Idle one when the cookie is missing, forged or expired.
// It never blocks a request.
func (m *SessionMiddleware) SetSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.lookup(r)
		if session == nil {
			session = m.store.Create()
			if err := m.setCookie(w, session.ID); err != nil {
				m.logger.Error("session_cookie_failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			m.logger.Debug("session_created", "session", session.ID)
		}

		ctx := localcontext.ContextSetSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) lookup(r *http.Request) *services.AnalysisSession {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}
	id, err := m.encryptor.Decrypt(cookie.Value)
	if err != nil {
		m.logger.Debug("session_cookie_rejected", "error", err)
		return nil
	}
	session, ok := m.store.Get(id)
	if !ok {
		return nil
	}
	return session
}

func (m *SessionMiddleware) setCookie(w http.ResponseWriter, id string) error {
	value, err := m.encryptor.Encrypt(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// HELPER FUNCS --------------------------------------------

// CurrentSession returns the session for the request, or nil.
func CurrentSession(r *http.Request) *services.AnalysisSession {
	return localcontext.ContextGetSession(r.Context())
}

// MustCurrentSession is like CurrentSession but panics if no session is found.
// Only use this in handlers mounted behind SetSession.
func MustCurrentSession(r *http.Request) *services.AnalysisSession {
	session := localcontext.ContextGetSession(r.Context())
	if session == nil {
		panic("MustCurrentSession called without SetSession middleware")
	}
	return session
}
