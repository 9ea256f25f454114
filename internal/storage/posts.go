package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"buzzmill/internal/types"
)

const postColumns = `id, persona_id, category, title, content, shorts_script, writer, hits, fingerprint, source_url, created_at`

// CreatePost inserts a new post and sets post.ID and post.CreatedAt.
// A fingerprint collision with an already-committed post returns
// ErrDuplicateFingerprint; this is the authoritative duplicate guard.
func (s *sqliteStorage) CreatePost(ctx context.Context, post *types.Post) error {
	if post.Title == "" {
		return fmt.Errorf("post title is required")
	}
	if len(post.Fingerprint) != 64 {
		return fmt.Errorf("post fingerprint must be 64 hex chars (got %d)", len(post.Fingerprint))
	}

	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO posts (persona_id, category, title, content, shorts_script, writer, hits, fingerprint, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.PersonaID, post.Category, post.Title, post.Content, post.ShortsScript,
		post.Writer, post.Hits, post.Fingerprint, post.SourceURL, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("fingerprint %s: %w", post.Fingerprint, ErrDuplicateFingerprint)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read post id: %w", err)
	}
	post.ID = id
	post.CreatedAt = now
	return nil
}

// GetPost returns the post with the given id, or ErrNotFound.
func (s *sqliteStorage) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return post, nil
}

// RecentPosts returns up to limit posts, most recent first. This is the
// bounded window the near-duplicate detector compares against.
func (s *sqliteStorage) RecentPosts(ctx context.Context, limit int) ([]*types.Post, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.q.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []*types.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// ExistsByFingerprint reports whether a post with the given fingerprint is
// already committed.
func (s *sqliteStorage) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM posts WHERE fingerprint = ?`, fingerprint).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(sc scanner) (*types.Post, error) {
	var post types.Post
	err := sc.Scan(
		&post.ID, &post.PersonaID, &post.Category, &post.Title, &post.Content,
		&post.ShortsScript, &post.Writer, &post.Hits, &post.Fingerprint,
		&post.SourceURL, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
