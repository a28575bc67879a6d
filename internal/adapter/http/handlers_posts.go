package adapthttp

import (
	"net/http"

	"board/internal/app"
)

type postListItemResponse struct {
	ID        int64  `json:"id"`
	Number    int    `json:"number"`
	Author    string `json:"author"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type postResponse struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UserID    *int64 `json:"user_id"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page := intQuery(r, "page", app.DefaultPage)
	limit := intQuery(r, "limit", app.DefaultLimit)

	res, err := s.posts.List(r.Context(), page, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items := make([]postListItemResponse, 0, len(res.Items))
	for _, p := range res.Items {
		items = append(items, postListItemResponse{
			ID:        p.ID,
			Number:    p.Number,
			Author:    p.Author,
			Title:     p.Title,
			CreatedAt: displayTime(p.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": items, "total": res.Total})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author   string `json:"author"`
		Password string `json:"password"`
		Title    string `json:"title"`
		Content  string `json:"content"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	p, err := s.posts.Create(r.Context(), identityFrom(r.Context()), req.Author, req.Password, req.Title, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": p.ID, "created_at": displayTime(p.CreatedAt)})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	p, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{
		ID:        p.ID,
		Author:    p.Author,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: displayTime(p.CreatedAt),
		UserID:    p.UserID,
	})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	var req struct {
		Password string `json:"password"`
		Title    string `json:"title"`
		Content  string `json:"content"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	if err := s.posts.Update(r.Context(), identityFrom(r.Context()), id, req.Title, req.Content, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	if err := s.posts.Delete(r.Context(), identityFrom(r.Context()), id, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
