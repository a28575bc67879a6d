// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"board/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = domain.E(domain.KindUnauthorized, "아이디 또는 비밀번호가 올바르지 않습니다.")
	// ErrBlacklisted indicates that the member has been blocked by the admin.
	ErrBlacklisted = domain.E(domain.KindForbidden, "이용이 제한된 계정입니다.")

	errCredentialsRequired = domain.E(domain.KindValidation, "아이디와 비밀번호는 필수입니다.")
	errPasswordConfirm     = domain.E(domain.KindValidation, "비밀번호 확인이 일치하지 않습니다.")
	errReservedUsername    = domain.E(domain.KindValidation, "사용할 수 없는 아이디입니다.")
	errUsernameTaken       = domain.E(domain.KindConflict, "이미 사용 중인 아이디입니다.")
	errPasswordAccount     = domain.E(domain.KindConflict, "비밀번호로 가입된 계정에는 SSO로 로그인할 수 없습니다.")
)

// DefaultSessionTTL is used when the service is built with a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// AdminCredential is the process-configured admin login. PasswordHash, when
// set, is a bcrypt digest and takes precedence over Password.
type AdminCredential struct {
	Username     string
	Password     string
	PasswordHash string
}

func (a AdminCredential) verify(creds Credentials, password string) bool {
	switch {
	case a.PasswordHash != "":
		return creds.Verify(a.PasswordHash, password)
	case a.Password != "":
		return ConstantTimeCompare(a.Password, password)
	default:
		return false
	}
}

// AuthService handles registration, login and session resolution.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	creds    Credentials
	admin    AdminCredential
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, creds Credentials, admin AdminCredential, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		creds:    creds,
		admin:    admin,
		ttl:      ttl,
		now:      time.Now,
	}
}

// AdminUsername returns the reserved admin account name.
func (s *AuthService) AdminUsername() string {
	return s.admin.Username
}

// Register creates a member account.
func (s *AuthService) Register(ctx context.Context, username, password, passwordConfirm string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errCredentialsRequired
	}
	if password != passwordConfirm {
		return nil, errPasswordConfirm
	}
	if username == s.admin.Username {
		return nil, errReservedUsername
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, username, hash)
	if errors.Is(err, domain.ErrConflict) {
		return nil, errUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates a member or the admin and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if username == s.admin.Username {
		if !s.admin.verify(s.creds, password) {
			return nil, ErrInvalidCredentials
		}
		return s.startSession(ctx, domain.Admin(username))
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.creds.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlacklisted {
		return nil, ErrBlacklisted
	}
	return s.startSession(ctx, domain.RegisteredUser(user.ID, user.Username))
}

// LoginWithSSO creates a session for a user already authenticated by the
// identity provider, provisioning a password-less account on first use.
// Accounts registered with a password are never taken over by SSO.
func (s *AuthService) LoginWithSSO(ctx context.Context, username string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	if username == s.admin.Username {
		return nil, errReservedUsername
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.Create(ctx, username, "")
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race with a concurrent first login.
			user, err = s.users.GetByUsername(ctx, username)
		}
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrInvalidCredentials
		}
	}
	if user.PasswordHash != "" {
		return nil, errPasswordAccount
	}
	if user.IsBlacklisted {
		return nil, ErrBlacklisted
	}
	return s.startSession(ctx, domain.RegisteredUser(user.ID, user.Username))
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ResolveIdentity maps a session token to the caller's identity. Unknown,
// expired and stale tokens resolve to Anonymous; only store failures are
// returned as errors.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Anonymous(), nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return domain.Anonymous(), err
	}
	if session == nil {
		return domain.Anonymous(), nil
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return domain.Anonymous(), nil
	}

	if session.IsAdmin {
		if session.Username != s.admin.Username {
			_ = s.sessions.Delete(ctx, token)
			return domain.Anonymous(), nil
		}
		return domain.IdentityFromSession(session), nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return domain.Anonymous(), err
	}
	if user == nil || user.IsBlacklisted {
		_ = s.sessions.Delete(ctx, token)
		return domain.Anonymous(), nil
	}
	return domain.RegisteredUser(user.ID, user.Username), nil
}

// SweepExpired removes expired sessions from the store.
func (s *AuthService) SweepExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) startSession(ctx context.Context, who domain.Identity) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    who.UserID,
		Username:  who.Username,
		IsAdmin:   who.IsAdmin(),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
