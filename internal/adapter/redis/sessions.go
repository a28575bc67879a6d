// Package redis stores login sessions in Redis so they survive restarts of
// a memory-backed board and can be shared between replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"board/internal/domain"

	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "board:session:"

var _ domain.SessionRepository = (*SessionRepo)(nil)

// keyValue is the subset of the Redis client the session store uses.
type keyValue interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Close() error
}

// SessionRepo implements domain.SessionRepository. Expiry is delegated to
// Redis key TTLs.
type SessionRepo struct {
	client keyValue
	now    func() time.Time
}

// Open parses a redis:// URL, connects and pings.
func Open(ctx context.Context, url string) (*SessionRepo, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, domain.Wrap(domain.KindStoreUnavailable, "", err)
	}
	return New(client), nil
}

// New wraps an existing client.
func New(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client, now: time.Now}
}

// Close closes the client.
func (r *SessionRepo) Close() error {
	return r.client.Close()
}

type record struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(token string) string {
	return keyPrefix + token
}

func encode(s domain.Session) ([]byte, error) {
	return json.Marshal(record{
		UserID:    s.UserID,
		Username:  s.Username,
		IsAdmin:   s.IsAdmin,
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: s.CreatedAt.UTC(),
	})
}

func decode(token string, data []byte) (*domain.Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		Token:     token,
		UserID:    rec.UserID,
		Username:  rec.Username,
		IsAdmin:   rec.IsAdmin,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Create stores a session until its expiry.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(s.Token), data, ttl).Err(); err != nil {
		return domain.Wrap(domain.KindStoreUnavailable, "", err)
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindStoreUnavailable, "", err)
	}
	session, err := decode(token, data)
	if err != nil {
		// An unreadable value grants nothing; drop it so the cookie stops resolving.
		return nil, r.Delete(ctx, token)
	}
	return session, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return domain.Wrap(domain.KindStoreUnavailable, "", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts expired keys itself.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}
