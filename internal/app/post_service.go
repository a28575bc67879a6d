package app

import (
	"context"
	"math"
	"strings"

	"board/internal/domain"
)

// Listing defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 15
	MaxLimit     = 50
)

var (
	errPostNotFound      = domain.E(domain.KindNotFound, "게시글을 찾을 수 없습니다.")
	errTitleRequired     = domain.E(domain.KindValidation, "제목은 필수입니다.")
	errAnonymousRequired = domain.E(domain.KindValidation, "글쓴이, 비밀번호, 제목은 필수입니다.")
)

// PostService encapsulates post use cases and their authorization.
type PostService struct {
	repo  domain.PostRepository
	creds Credentials
}

// NewPostService creates a PostService backed by the given repository.
func NewPostService(repo domain.PostRepository, creds Credentials) *PostService {
	return &PostService{repo: repo, creds: creds}
}

// NormalizePage coerces page to at least 1 and clamps limit to [1, MaxLimit].
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// List returns one page of posts, newest first. Each item's Number is
// total-offset-index, so the newest post is always numbered total and the
// oldest 1 regardless of the page it lands on.
func (s *PostService) List(ctx context.Context, page, limit int) (*domain.PostPage, error) {
	page, limit = NormalizePage(page, limit)

	total, err := s.repo.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	// A page whose offset overflows or lies past the last post is empty.
	if page-1 > (math.MaxInt-limit)/limit || (page-1)*limit >= total {
		return &domain.PostPage{Items: []domain.PostListItem{}, Total: total, Page: page, Limit: limit}, nil
	}
	offset := (page - 1) * limit
	posts, err := s.repo.ListPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PostListItem, 0, len(posts))
	for i, p := range posts {
		items = append(items, domain.PostListItem{
			ID:        p.ID,
			Number:    total - offset - i,
			Author:    p.Author,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
		})
	}
	return &domain.PostPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Create stores a new post. A logged-in caller posts under their session
// username with no password; the admin's posts carry no user id. Anonymous
// callers must name an author and set a password.
func (s *PostService) Create(ctx context.Context, who domain.Identity, author, password, title, content string) (*domain.Post, error) {
	author = strings.TrimSpace(author)
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	np := domain.NewPost{Title: title, Content: content}
	if who.IsAnonymous() {
		if author == "" || password == "" || title == "" {
			return nil, errAnonymousRequired
		}
		hash, err := s.creds.Hash(password)
		if err != nil {
			return nil, err
		}
		np.Author = author
		np.PasswordHash = hash
	} else {
		if title == "" {
			return nil, errTitleRequired
		}
		np.Author = who.Username
		if who.IsUser() {
			id := who.UserID
			np.UserID = &id
		}
	}
	return s.repo.CreatePost(ctx, np)
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errPostNotFound
	}
	return p, nil
}

// Update replaces a post's title and content after authorizing who.
func (s *PostService) Update(ctx context.Context, who domain.Identity, id int64, title, content, password string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return errTitleRequired
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(s.creds, ActionUpdate, p.Author, p.PasswordHash, who, password); err != nil {
		return err
	}
	ok, err := s.repo.UpdatePost(ctx, id, title, content)
	if err != nil {
		return err
	}
	if !ok {
		return errPostNotFound
	}
	return nil
}

// Delete removes a post after authorizing who.
func (s *PostService) Delete(ctx context.Context, who domain.Identity, id int64, password string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(s.creds, ActionDelete, p.Author, p.PasswordHash, who, password); err != nil {
		return err
	}
	ok, err := s.repo.DeletePost(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errPostNotFound
	}
	return nil
}
