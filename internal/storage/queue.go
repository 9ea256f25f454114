package storage

import (
	"context"
	"fmt"
	"time"
)

// EnqueueProduction records a pending production request for a post. The
// content item stays committed whether or not production ever succeeds;
// production is decoupled and independently retryable.
func (s *sqliteStorage) EnqueueProduction(ctx context.Context, postID int64, videoType string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO production_queue (post_id, video_type, status, requested_at)
		VALUES (?, ?, ?, ?)`,
		postID, videoType, productionPending, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue production for post %d: %w", postID, err)
	}
	return nil
}

// CompleteProduction marks the pending queue row for a post as completed and
// records the produced artifact paths.
func (s *sqliteStorage) CompleteProduction(ctx context.Context, postID int64, videoPath, thumbnailPath string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE production_queue
		SET status = ?, video_path = ?, thumbnail_path = ?, completed_at = ?
		WHERE post_id = ? AND status = ?`,
		productionCompleted, videoPath, thumbnailPath, time.Now().UTC(), postID, productionPending,
	)
	if err != nil {
		return fmt.Errorf("failed to complete production for post %d: %w", postID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no pending production row for post %d: %w", postID, ErrNotFound)
	}
	return nil
}

// FailProduction marks the pending queue row for a post as failed with the
// given error message.
func (s *sqliteStorage) FailProduction(ctx context.Context, postID int64, errorMsg string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE production_queue
		SET status = ?, error_msg = ?, completed_at = ?
		WHERE post_id = ? AND status = ?`,
		productionFailed, errorMsg, time.Now().UTC(), postID, productionPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark production failed for post %d: %w", postID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no pending production row for post %d: %w", postID, ErrNotFound)
	}
	return nil
}
