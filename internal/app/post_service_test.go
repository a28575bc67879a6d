package app_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"board/internal/adapter/memory"
	"board/internal/app"
	"board/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(t *testing.T) (*app.PostService, *memory.DB) {
	t.Helper()
	db := memory.New()
	db.SetClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })
	return app.NewPostService(db, testCreds()), db
}

func seedPosts(t *testing.T, svc *app.PostService, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := svc.Create(context.Background(), domain.Anonymous(), "guest", "pw", fmt.Sprintf("post %d", i), "")
		require.NoError(t, err)
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 15, 1, 15},
		{0, 15, 1, 15},
		{-3, 15, 1, 15},
		{2, 0, 2, 1},
		{2, -1, 2, 1},
		{2, 50, 2, 50},
		{2, 51, 2, 50},
		{2, 1000, 2, 50},
	}
	for _, tc := range tests {
		page, limit := app.NormalizePage(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, page, "page(%d,%d)", tc.page, tc.limit)
		assert.Equal(t, tc.wantLimit, limit, "limit(%d,%d)", tc.page, tc.limit)
	}
}

func TestPostService_ListNumbering(t *testing.T) {
	svc, _ := newPostService(t)
	seedPosts(t, svc, 40)
	ctx := context.Background()

	page, err := svc.List(ctx, 2, 15)
	require.NoError(t, err)
	assert.Equal(t, 40, page.Total)
	require.Len(t, page.Items, 15)
	for i, item := range page.Items {
		assert.Equal(t, 25-i, item.Number)
		assert.Equal(t, int64(25-i), item.ID)
	}

	last, err := svc.List(ctx, 3, 15)
	require.NoError(t, err)
	require.Len(t, last.Items, 10)
	assert.Equal(t, 10, last.Items[0].Number)
	assert.Equal(t, 1, last.Items[9].Number)

	beyond, err := svc.List(ctx, 9, 15)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 40, beyond.Total)
}

func TestPostService_ListClampsLimit(t *testing.T) {
	svc, _ := newPostService(t)
	seedPosts(t, svc, 60)

	page, err := svc.List(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Equal(t, app.MaxLimit, page.Limit)
	assert.Len(t, page.Items, app.MaxLimit)
	assert.Equal(t, 60, page.Items[0].Number)
}

func TestPostService_ListEmpty(t *testing.T) {
	svc, _ := newPostService(t)

	page, err := svc.List(context.Background(), 1, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestPostService_ListHugePage(t *testing.T) {
	svc, _ := newPostService(t)
	seedPosts(t, svc, 3)
	ctx := context.Background()

	for _, tc := range []struct{ page, limit int }{
		{1<<62 + 1, 2},
		{math.MaxInt, app.MaxLimit},
		{math.MaxInt / 2, 3},
	} {
		page, err := svc.List(ctx, tc.page, tc.limit)
		require.NoError(t, err, "page %d limit %d", tc.page, tc.limit)
		assert.Equal(t, 3, page.Total)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	}
}

func TestPostService_CreateAnonymous(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	missing := []struct {
		name                    string
		author, password, title string
	}{
		{"no author", "", "pw", "t"},
		{"blank author", "   ", "pw", "t"},
		{"no password", "guest", "", "t"},
		{"no title", "guest", "pw", ""},
		{"blank title", "guest", "pw", "  "},
	}
	for _, tc := range missing {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, domain.Anonymous(), tc.author, tc.password, tc.title, "body")
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	p, err := svc.Create(ctx, domain.Anonymous(), " guest ", "pw", " hello ", " body ")
	require.NoError(t, err)
	assert.Equal(t, "guest", p.Author)
	assert.Equal(t, "hello", p.Title)
	assert.Equal(t, "body", p.Content)
	assert.Nil(t, p.UserID)
	assert.NotEmpty(t, p.PasswordHash)
	assert.NotEqual(t, "pw", p.PasswordHash)
	assert.True(t, testCreds().Verify(p.PasswordHash, "pw"))
}

func TestPostService_CreateWithSession(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.RegisteredUser(7, "kim"), "spoofed", "pw", "mine", "")
	require.NoError(t, err)
	assert.Equal(t, "kim", p.Author)
	assert.Empty(t, p.PasswordHash)
	require.NotNil(t, p.UserID)
	assert.Equal(t, int64(7), *p.UserID)

	a, err := svc.Create(ctx, domain.Admin("admin"), "", "", "notice", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", a.Author)
	assert.Empty(t, a.PasswordHash)
	assert.Nil(t, a.UserID)

	_, err = svc.Create(ctx, domain.RegisteredUser(7, "kim"), "", "", "", "body")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostService_Get(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Anonymous(), "guest", "pw", "t", "c")
	require.NoError(t, err)

	p, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", p.Title)
	assert.Equal(t, "c", p.Content)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostService_Update(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	anonPost, err := svc.Create(ctx, domain.Anonymous(), "guest", "1234", "old", "old body")
	require.NoError(t, err)
	memberPost, err := svc.Create(ctx, domain.RegisteredUser(1, "kim"), "", "", "mine", "")
	require.NoError(t, err)

	t.Run("title checked before lookup", func(t *testing.T) {
		err := svc.Update(ctx, domain.Anonymous(), 999, " ", "x", "1234")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing post", func(t *testing.T) {
		err := svc.Update(ctx, domain.Anonymous(), 999, "new", "x", "1234")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("wrong password leaves post unchanged", func(t *testing.T) {
		err := svc.Update(ctx, domain.Anonymous(), anonPost.ID, "new", "x", "0000")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		p, err := svc.Get(ctx, anonPost.ID)
		require.NoError(t, err)
		assert.Equal(t, "old", p.Title)
	})

	t.Run("correct password", func(t *testing.T) {
		require.NoError(t, svc.Update(ctx, domain.Anonymous(), anonPost.ID, "new", "new body", "1234"))

		p, err := svc.Get(ctx, anonPost.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", p.Title)
		assert.Equal(t, "new body", p.Content)
		assert.Equal(t, "guest", p.Author)
	})

	t.Run("owner without password", func(t *testing.T) {
		require.NoError(t, svc.Update(ctx, domain.RegisteredUser(1, "kim"), memberPost.ID, "edited", "", ""))
	})

	t.Run("other member", func(t *testing.T) {
		err := svc.Update(ctx, domain.RegisteredUser(2, "lee"), memberPost.ID, "hijack", "", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin cannot edit member post", func(t *testing.T) {
		err := svc.Update(ctx, domain.Admin("admin"), memberPost.ID, "moderated", "", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestPostService_Delete(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	anonPost, err := svc.Create(ctx, domain.Anonymous(), "guest", "1234", "a", "")
	require.NoError(t, err)
	memberPost, err := svc.Create(ctx, domain.RegisteredUser(1, "kim"), "", "", "b", "")
	require.NoError(t, err)
	ownPost, err := svc.Create(ctx, domain.RegisteredUser(1, "kim"), "", "", "c", "")
	require.NoError(t, err)

	err = svc.Delete(ctx, domain.Anonymous(), anonPost.ID, "0000")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, domain.Anonymous(), anonPost.ID, "1234"))
	_, err = svc.Get(ctx, anonPost.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, domain.Anonymous(), anonPost.ID, "1234")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, domain.Admin("admin"), memberPost.ID, ""))
	require.NoError(t, svc.Delete(ctx, domain.RegisteredUser(1, "kim"), ownPost.ID, ""))

	page, err := svc.List(ctx, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}
