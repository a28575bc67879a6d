// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// AdminUserID is the user id carried by admin sessions. The admin account has
// no row in the users table.
const AdminUserID int64 = -1

// User represents a registered board member.
type User struct {
	ID            int64
	Username      string
	PasswordHash  string
	IsBlacklisted bool
	CreatedAt     time.Time
}

// Session represents an active login, keyed by an opaque client-held token.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	IsAdmin   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IdentityKind enumerates who is making a request.
type IdentityKind int

const (
	IdentityAnonymous IdentityKind = iota
	IdentityUser
	IdentityAdmin
)

// Identity is the resolved caller of a request. It is passed explicitly into
// every service call that makes an authorization decision.
type Identity struct {
	Kind     IdentityKind
	UserID   int64
	Username string
}

// Anonymous returns the identity of a caller without a session.
func Anonymous() Identity { return Identity{Kind: IdentityAnonymous} }

// RegisteredUser returns the identity of a logged-in member.
func RegisteredUser(id int64, username string) Identity {
	return Identity{Kind: IdentityUser, UserID: id, Username: username}
}

// Admin returns the identity of the logged-in administrator.
func Admin(username string) Identity {
	return Identity{Kind: IdentityAdmin, UserID: AdminUserID, Username: username}
}

// IsAnonymous reports whether the caller has no session.
func (i Identity) IsAnonymous() bool { return i.Kind == IdentityAnonymous }

// IsAdmin reports whether the caller is the administrator.
func (i Identity) IsAdmin() bool { return i.Kind == IdentityAdmin }

// IsUser reports whether the caller is a registered member.
func (i Identity) IsUser() bool { return i.Kind == IdentityUser }

// IdentityFromSession maps a stored session to the identity it grants.
func IdentityFromSession(s *Session) Identity {
	if s == nil {
		return Anonymous()
	}
	if s.IsAdmin {
		return Admin(s.Username)
	}
	return RegisteredUser(s.UserID, s.Username)
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// Create fails with ErrConflict when the username is taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	// ListMembers returns every user except excludeUsername, newest first.
	ListMembers(ctx context.Context, excludeUsername string) ([]User, error)
	// SetBlacklisted updates the row matching id unless its username is
	// excludeUsername. A missing row is not an error.
	SetBlacklisted(ctx context.Context, id int64, excludeUsername string, blacklisted bool) error
}

// SessionRepository defines the port for session persistence operations.
// GetByToken returns (nil, nil) for unknown tokens.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// HealthChecker reports whether the backing store is reachable and has its
// schema in place.
type HealthChecker interface {
	Check(ctx context.Context) error
}
