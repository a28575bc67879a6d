package postgres

import (
	"context"
	"database/sql"
	"errors"

	"board/internal/domain"
)

const postColumns = "id, author, password_hash, user_id, title, content, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p      domain.Post
		hash   sql.NullString
		userID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Author, &hash, &userID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.PasswordHash = hash.String
	if userID.Valid {
		id := userID.Int64
		p.UserID = &id
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// CreatePost inserts a post and returns the stored row.
func (d *DB) CreatePost(ctx context.Context, np domain.NewPost) (*domain.Post, error) {
	var hash sql.NullString
	if np.PasswordHash != "" {
		hash = sql.NullString{String: np.PasswordHash, Valid: true}
	}
	var userID sql.NullInt64
	if np.UserID != nil {
		userID = sql.NullInt64{Int64: *np.UserID, Valid: true}
	}

	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO posts(author, password_hash, user_id, title, content, created_at) VALUES($1, $2, $3, $4, $5, now()) RETURNING "+postColumns+";",
		np.Author, hash, userID, np.Title, np.Content,
	)
	p, err := scanPost(row)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// GetPost retrieves a post by ID.
func (d *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1;", id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ListPosts returns one page of posts, newest first.
func (d *DB) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2;", limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, *p)
	}
	return out, mapError(rows.Err())
}

// CountPosts returns the total number of posts.
func (d *DB) CountPosts(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts;").Scan(&count)
	return count, mapError(err)
}

// UpdatePost replaces a post's title and content.
func (d *DB) UpdatePost(ctx context.Context, id int64, title, content string) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "UPDATE posts SET title = $1, content = $2 WHERE id = $3;", title, content, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeletePost removes a post by ID.
func (d *DB) DeletePost(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM posts WHERE id = $1;", id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
