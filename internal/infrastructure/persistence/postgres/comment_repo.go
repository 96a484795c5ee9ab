package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/forum-hub/forum-engagement/internal/domain/comment"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// CommentRepository implements comment.Repository on PostgreSQL.
type CommentRepository struct {
	conn *Connection
}

// NewCommentRepository creates a CommentRepository.
func NewCommentRepository(conn *Connection) *CommentRepository {
	return &CommentRepository{conn: conn}
}

// Add inserts the comment and, for post comments, refreshes the post's
// comment count in the same transaction. The count is recomputed from a live
// COUNT(*) inside the transaction so the stored counter can never drift from
// the rows, even under concurrent comment writes.
func (r *CommentRepository) Add(ctx context.Context, c *comment.Comment) error {
	if c == nil {
		return shared.NewDomainError("comment", "Add", shared.ErrInvalidArgument, "comment cannot be nil")
	}
	if c.UserID <= 0 || c.EntityID <= 0 {
		return shared.NewDomainError("comment", "Add", shared.ErrInvalidID, "ids must be positive")
	}
	if c.EntityKind != shared.KindPost && c.EntityKind != shared.KindComment {
		return shared.NewDomainError("comment", "Add", shared.ErrInvalidArgument, "comments target posts or comments")
	}
	if c.Content == "" {
		return shared.NewDomainError("comment", "Add", shared.ErrEmptyValue, "content is required")
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		const insert = `INSERT INTO comment (user_id, entity_kind, entity_id, target_id, content, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

		err := tx.QueryRow(ctx, insert,
			c.UserID, int(c.EntityKind), c.EntityID, c.TargetID, c.Content, c.Status, c.CreatedAt,
		).Scan(&c.ID)
		if err != nil {
			return storeErr("comment", "Add", err)
		}

		if c.EntityKind != shared.KindPost {
			return nil
		}

		const refresh = `UPDATE post SET comment_count = (
				SELECT COUNT(*) FROM comment
				WHERE entity_kind = $1 AND entity_id = $2 AND status = 0
			) WHERE id = $2`

		if _, err := tx.Exec(ctx, refresh, int(shared.KindPost), c.EntityID); err != nil {
			return storeErr("comment", "Add", err)
		}
		return nil
	})
}

// ByID returns the comment or ErrNotFound.
func (r *CommentRepository) ByID(ctx context.Context, id int64) (*comment.Comment, error) {
	const q = `SELECT id, user_id, entity_kind, entity_id, target_id, content, status, created_at
		FROM comment WHERE id = $1`

	var c comment.Comment
	var kind int
	err := r.conn.Pool().QueryRow(ctx, q, id).Scan(
		&c.ID, &c.UserID, &kind, &c.EntityID, &c.TargetID, &c.Content, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("comment", "ByID", shared.ErrNotFound, "comment not found")
		}
		return nil, storeErr("comment", "ByID", err)
	}
	c.EntityKind = shared.EntityKind(kind)
	return &c, nil
}

// CountByEntity counts visible comments on a target.
func (r *CommentRepository) CountByEntity(ctx context.Context, kind shared.EntityKind, entityID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM comment WHERE entity_kind = $1 AND entity_id = $2 AND status = 0`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, int(kind), entityID).Scan(&n); err != nil {
		return 0, storeErr("comment", "CountByEntity", err)
	}
	return n, nil
}

// PageByEntity lists visible comments on a target, oldest first.
func (r *CommentRepository) PageByEntity(ctx context.Context, kind shared.EntityKind, entityID int64, offset, limit int) ([]comment.Comment, error) {
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("comment", "PageByEntity", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	const q = `SELECT id, user_id, entity_kind, entity_id, target_id, content, status, created_at
		FROM comment
		WHERE entity_kind = $1 AND entity_id = $2 AND status = 0
		ORDER BY id ASC
		OFFSET $3 LIMIT $4`

	rows, err := r.conn.Pool().Query(ctx, q, int(kind), entityID, offset, limit)
	if err != nil {
		return nil, storeErr("comment", "PageByEntity", err)
	}
	defer rows.Close()

	var out []comment.Comment
	for rows.Next() {
		var c comment.Comment
		var k int
		if err := rows.Scan(&c.ID, &c.UserID, &k, &c.EntityID, &c.TargetID, &c.Content, &c.Status, &c.CreatedAt); err != nil {
			return nil, storeErr("comment", "PageByEntity", err)
		}
		c.EntityKind = shared.EntityKind(k)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("comment", "PageByEntity", err)
	}
	return out, nil
}
