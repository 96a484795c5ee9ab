package postgres

import (
	"context"
	"fmt"
)

// migrations holds the schema, applied in order. Each entry is idempotent so
// reapplying on startup is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS post (
		id            BIGSERIAL PRIMARY KEY,
		user_id       BIGINT NOT NULL,
		title         TEXT NOT NULL,
		content       TEXT NOT NULL DEFAULT '',
		type          SMALLINT NOT NULL DEFAULT 0,
		status        SMALLINT NOT NULL DEFAULT 0,
		comment_count BIGINT NOT NULL DEFAULT 0,
		score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_post_user ON post (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_post_hot ON post (type DESC, score DESC, created_at DESC) WHERE status <> 2`,

	`CREATE TABLE IF NOT EXISTS comment (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		entity_kind SMALLINT NOT NULL,
		entity_id   BIGINT NOT NULL,
		target_id   BIGINT NOT NULL DEFAULT 0,
		content     TEXT NOT NULL,
		status      SMALLINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comment_entity ON comment (entity_kind, entity_id)`,

	`CREATE TABLE IF NOT EXISTS message (
		id              BIGSERIAL PRIMARY KEY,
		from_id         BIGINT NOT NULL,
		to_id           BIGINT NOT NULL,
		conversation_id TEXT NOT NULL,
		content         TEXT NOT NULL,
		status          SMALLINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_message_conversation ON message (conversation_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_message_to ON message (to_id, status)`,
}

// Migrate applies the schema migrations in order.
func (c *Connection) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migration %d failed: %w", i, err)
		}
	}
	return nil
}
