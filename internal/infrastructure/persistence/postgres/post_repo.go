package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// PostRepository implements post.Repository on PostgreSQL.
type PostRepository struct {
	conn *Connection
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(conn *Connection) *PostRepository {
	return &PostRepository{conn: conn}
}

const postColumns = `id, user_id, title, content, type, status, comment_count, score, created_at`

// ByID returns the post or ErrNotFound. Removed posts are not returned.
func (r *PostRepository) ByID(ctx context.Context, id int64) (*post.Post, error) {
	q := `SELECT ` + postColumns + ` FROM post WHERE id = $1 AND status <> 2`

	p, err := scanPost(r.conn.Pool().QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NewDomainError("post", "ByID", shared.ErrNotFound, "post not found")
		}
		return nil, storeErr("post", "ByID", err)
	}
	return p, nil
}

// Insert stores a post and fills in its assigned id.
func (r *PostRepository) Insert(ctx context.Context, p *post.Post) error {
	const q = `INSERT INTO post (user_id, title, content, type, status, comment_count, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := r.conn.Pool().QueryRow(ctx, q,
		p.UserID, p.Title, p.Content, int(p.Type), int(p.Status), p.CommentCount, p.Score, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return storeErr("post", "Insert", err)
	}
	return nil
}

// Rows counts visible posts; scopeUserID 0 counts across all users.
func (r *PostRepository) Rows(ctx context.Context, scopeUserID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM post WHERE status <> 2 AND ($1 = 0 OR user_id = $1)`

	var n int64
	if err := r.conn.Pool().QueryRow(ctx, q, scopeUserID).Scan(&n); err != nil {
		return 0, storeErr("post", "Rows", err)
	}
	return n, nil
}

// Page lists visible posts with offset+limit. Pinned posts lead in both
// order modes; hot order then ranks by score, latest order by creation time.
func (r *PostRepository) Page(ctx context.Context, scopeUserID int64, offset, limit int, order post.OrderMode) ([]post.Post, error) {
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("post", "Page", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	orderBy := `type DESC, created_at DESC`
	if order == post.OrderHot {
		orderBy = `type DESC, score DESC, created_at DESC`
	}

	q := `SELECT ` + postColumns + ` FROM post
		WHERE status <> 2 AND ($1 = 0 OR user_id = $1)
		ORDER BY ` + orderBy + `
		OFFSET $2 LIMIT $3`

	rows, err := r.conn.Pool().Query(ctx, q, scopeUserID, offset, limit)
	if err != nil {
		return nil, storeErr("post", "Page", err)
	}
	defer rows.Close()

	var out []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, storeErr("post", "Page", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("post", "Page", err)
	}
	return out, nil
}

// HotIDs returns one page of the global hot-ranked post ids.
func (r *PostRepository) HotIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	if offset < 0 || limit <= 0 {
		return nil, shared.NewDomainError("post", "HotIDs", shared.ErrInvalidArgument, "offset must be >= 0 and limit > 0")
	}

	const q = `SELECT id FROM post WHERE status <> 2
		ORDER BY type DESC, score DESC, created_at DESC
		OFFSET $1 LIMIT $2`

	rows, err := r.conn.Pool().Query(ctx, q, offset, limit)
	if err != nil {
		return nil, storeErr("post", "HotIDs", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("post", "HotIDs", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("post", "HotIDs", err)
	}
	return ids, nil
}

// UpdateStatus flips a post's moderation status.
func (r *PostRepository) UpdateStatus(ctx context.Context, id int64, status post.Status) error {
	tag, err := r.conn.Pool().Exec(ctx, `UPDATE post SET status = $1 WHERE id = $2`, int(status), id)
	if err != nil {
		return storeErr("post", "UpdateStatus", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("post", "UpdateStatus", shared.ErrNotFound, "post not found")
	}
	return nil
}

// UpdateType flips a post's pinning level.
func (r *PostRepository) UpdateType(ctx context.Context, id int64, t post.Type) error {
	tag, err := r.conn.Pool().Exec(ctx, `UPDATE post SET type = $1 WHERE id = $2`, int(t), id)
	if err != nil {
		return storeErr("post", "UpdateType", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("post", "UpdateType", shared.ErrNotFound, "post not found")
	}
	return nil
}

// UpdateScore stores a recomputed ranking score.
func (r *PostRepository) UpdateScore(ctx context.Context, id int64, score float64) error {
	tag, err := r.conn.Pool().Exec(ctx, `UPDATE post SET score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return storeErr("post", "UpdateScore", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("post", "UpdateScore", shared.ErrNotFound, "post not found")
	}
	return nil
}

// scanPost reads one post row.
func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	var typ, status int
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &typ, &status, &p.CommentCount, &p.Score, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Type = post.Type(typ)
	p.Status = post.Status(status)
	return &p, nil
}
