package adapthttp

import (
	"net/http"

	"board/internal/app"
)

type memberResponse struct {
	ID            int64  `json:"id"`
	Number        int    `json:"number"`
	Username      string `json:"username"`
	IsBlacklisted bool   `json:"is_blacklisted"`
	CreatedAt     string `json:"created_at"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.members.ListMembers(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			ID:            m.ID,
			Number:        m.Number,
			Username:      m.Username,
			IsBlacklisted: m.IsBlacklisted,
			CreatedAt:     displayTime(m.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": out})
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	who := identityFrom(r.Context())
	if !who.IsAdmin() {
		s.fail(w, r, app.ErrAdminOnly)
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	var req struct {
		Blacklist *bool `json:"blacklist"`
	}
	if err := parseJSON(r, &req); err != nil || req.Blacklist == nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	if err := s.members.SetBlacklist(r.Context(), who, id, *req.Blacklist); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
