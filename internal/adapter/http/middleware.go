package adapthttp

import (
	"context"
	"net/http"
	"time"

	"board/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

const sessionCookie = "session"

type resolvedIdentity struct {
	identity domain.Identity
	err      error
}

// identityFrom returns the caller resolved by identityMiddleware.
func identityFrom(ctx context.Context) domain.Identity {
	if v, ok := ctx.Value(identityContextKey).(resolvedIdentity); ok {
		return v.identity
	}
	return domain.Anonymous()
}

func identityErrFrom(ctx context.Context) error {
	if v, ok := ctx.Value(identityContextKey).(resolvedIdentity); ok {
		return v.err
	}
	return nil
}

// identityMiddleware resolves the session cookie into an identity for every
// request. Lookup failures are recorded and only surface on routes that need
// a login.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := resolvedIdentity{identity: domain.Anonymous()}
		if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			res.identity, res.err = s.auth.ResolveIdentity(r.Context(), cookie.Value)
			if res.err != nil {
				s.log.Error("resolve session", "err", res.err)
			}
		}
		ctx := context.WithValue(r.Context(), identityContextKey, res)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireLogin rejects anonymous callers before the handler runs.
func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := identityErrFrom(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		if identityFrom(r.Context()).IsAnonymous() {
			writeError(w, http.StatusUnauthorized, msgLoginNeeded)
			return
		}
		next(w, r)
	}
}

// postRoute guards the post routes: behind the login wall unless anonymous
// posting is enabled.
func (s *Server) postRoute(next http.HandlerFunc) http.HandlerFunc {
	if s.allowAnonymous {
		return next
	}
	return s.requireLogin(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}
