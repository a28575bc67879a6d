package domain

import (
	"context"
	"time"
)

// Post is a bulletin-board entry. PasswordHash is empty for posts created
// under a session; UserID is set only for posts by a logged-in member.
type Post struct {
	ID           int64
	Author       string
	PasswordHash string
	UserID       *int64
	Title        string
	Content      string
	CreatedAt    time.Time
}

// NewPost holds the fields written when a post is created.
type NewPost struct {
	Author       string
	PasswordHash string
	UserID       *int64
	Title        string
	Content      string
}

// PostListItem is one row of a listing page. Number is the post's
// reverse-chronological rank over the whole board.
type PostListItem struct {
	ID        int64
	Number    int
	Author    string
	Title     string
	CreatedAt time.Time
}

// PostPage is a page of listing results plus the board-wide total.
type PostPage struct {
	Items []PostListItem
	Total int
	Page  int
	Limit int
}

// PostRepository is the port for post persistence.
type PostRepository interface {
	CreatePost(ctx context.Context, p NewPost) (*Post, error)
	// GetPost returns (nil, nil) when no row matches.
	GetPost(ctx context.Context, id int64) (*Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, limit, offset int) ([]Post, error)
	CountPosts(ctx context.Context) (int, error)
	// UpdatePost and DeletePost report whether a row was affected.
	UpdatePost(ctx context.Context, id int64, title, content string) (bool, error)
	DeletePost(ctx context.Context, id int64) (bool, error)
}

// Member is a user as shown in the admin member list.
type Member struct {
	ID            int64
	Number        int
	Username      string
	IsBlacklisted bool
	CreatedAt     time.Time
}
