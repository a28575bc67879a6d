package adapthttp

import (
	"net/http"

	"board/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
}

func (s *Server) handleDBCheck(w http.ResponseWriter, r *http.Request) {
	st := s.status.CheckStore(r.Context())
	if !st.OK {
		s.log.Error("db check", "err", st.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": st.Message})
}

// fail writes err as a JSON error. Store and internal failures are logged
// and replaced by a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForKind(domain.KindOf(err))
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, status, msgInternal)
		return
	}
	msg := domain.MessageOf(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}
