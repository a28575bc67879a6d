package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"board/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKindSentinel(t *testing.T) {
	err := domain.E(domain.KindForbidden, "nope")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	wrapped := fmt.Errorf("delete post: %w", err)
	assert.ErrorIs(t, wrapped, domain.ErrForbidden)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(wrapped))
	assert.Equal(t, "nope", domain.MessageOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	err := domain.Wrap(domain.KindStoreUnavailable, "", fmt.Errorf("%w: relation does not exist", domain.ErrSchemaMissing))

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, domain.ErrSchemaMissing)
	assert.Equal(t, "store unavailable: schema missing: relation does not exist", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, domain.MessageOf(err))
	assert.Equal(t, domain.KindInternal, domain.KindOf(nil))
}

func TestIdentityFromSession(t *testing.T) {
	assert.True(t, domain.IdentityFromSession(nil).IsAnonymous())

	admin := domain.IdentityFromSession(&domain.Session{UserID: domain.AdminUserID, Username: "admin", IsAdmin: true})
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, domain.AdminUserID, admin.UserID)

	user := domain.IdentityFromSession(&domain.Session{UserID: 7, Username: "kim"})
	assert.True(t, user.IsUser())
	assert.Equal(t, domain.RegisteredUser(7, "kim"), user)
}
