// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"board/internal/domain"
)

var errUserExists = errors.New("user already exists")

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	posts    []domain.Post
	users    []*domain.User
	sessions map[string]*domain.Session

	postIDCounter int64
	userIDCounter int64

	now func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.PostRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.HealthChecker = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// SetClock overrides the time source used for created_at stamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// Check always succeeds.
func (db *DB) Check(ctx context.Context) error {
	return nil
}

// --- PostRepository ---

// CreatePost stores a post and assigns its id and timestamp.
func (db *DB) CreatePost(ctx context.Context, np domain.NewPost) (*domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.postIDCounter++
	p := domain.Post{
		ID:           db.postIDCounter,
		Author:       np.Author,
		PasswordHash: np.PasswordHash,
		UserID:       copyID(np.UserID),
		Title:        np.Title,
		Content:      np.Content,
		CreatedAt:    db.now().UTC(),
	}
	db.posts = append(db.posts, p)
	out := p
	out.UserID = copyID(p.UserID)
	return &out, nil
}

// GetPost returns a copy of the post with the given id.
func (db *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.posts {
		if p.ID == id {
			out := p
			out.UserID = copyID(p.UserID)
			return &out, nil
		}
	}
	return nil, nil
}

// ListPosts returns posts newest first.
func (db *DB) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Post, len(db.posts))
	copy(result, db.posts)

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset < 0 || limit < 1 || offset >= len(result) {
		return []domain.Post{}, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	for i := range result {
		result[i].UserID = copyID(result[i].UserID)
	}
	return result, nil
}

// CountPosts returns the number of stored posts.
func (db *DB) CountPosts(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.posts), nil
}

// UpdatePost replaces title and content.
func (db *DB) UpdatePost(ctx context.Context, id int64, title, content string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.posts {
		if db.posts[i].ID == id {
			db.posts[i].Title = title
			db.posts[i].Content = content
			return true, nil
		}
	}
	return false, nil
}

// DeletePost removes a post.
func (db *DB) DeletePost(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, p := range db.posts {
		if p.ID == id {
			db.posts = append(db.posts[:i], db.posts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.Wrap(domain.KindConflict, "", errUserExists)
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    db.now().UTC(),
	}
	db.users = append(db.users, u)
	out := *u
	return &out, nil
}

// ListMembers returns all users except excludeUsername, newest first.
func (db *DB) ListMembers(ctx context.Context, excludeUsername string) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.User, 0, len(db.users))
	for _, u := range db.users {
		if u.Username != excludeUsername {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetBlacklisted updates the blacklist flag of a user.
func (db *DB) SetBlacklisted(ctx context.Context, id int64, excludeUsername string, blacklisted bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id && u.Username != excludeUsername {
			u.IsBlacklisted = blacklisted
		}
	}
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		out := *s
		return &out, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
