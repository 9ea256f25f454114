package storage

import (
	"context"
	"fmt"
	"time"

	"buzzmill/internal/types"
)

// CreateReply inserts one persona reply and sets reply.ID and reply.CreatedAt.
// Replies are persisted individually, never as a batch, so a failure on reply
// k does not affect replies 1..k-1.
func (s *sqliteStorage) CreateReply(ctx context.Context, reply *types.Reply) error {
	if reply.PostID == 0 {
		return fmt.Errorf("reply post_id is required")
	}
	if reply.Content == "" {
		return fmt.Errorf("reply content is required")
	}
	if reply.Position < 1 || reply.Position > 5 {
		return fmt.Errorf("reply position must be 1..5 (got %d)", reply.Position)
	}

	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO replies (post_id, persona_id, writer, content, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reply.PostID, reply.PersonaID, reply.Writer, reply.Content, reply.Position, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read reply id: %w", err)
	}
	reply.ID = id
	reply.CreatedAt = now
	return nil
}

// RepliesByPost returns the replies for a post in archetype assignment order.
func (s *sqliteStorage) RepliesByPost(ctx context.Context, postID int64) ([]*types.Reply, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, post_id, persona_id, writer, content, position, created_at
		FROM replies WHERE post_id = ? ORDER BY position ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []*types.Reply
	for rows.Next() {
		var r types.Reply
		if err := rows.Scan(&r.ID, &r.PostID, &r.PersonaID, &r.Writer, &r.Content, &r.Position, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate replies: %w", err)
	}
	return replies, nil
}
