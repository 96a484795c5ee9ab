package eventhandler

import (
	"context"
	"log/slog"

	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INDEX UPDATER
// ══════════════════════════════════════════════════════════════════════════════

// IndexUpdater applies publish and delete events to the post search index.
//
// The index itself sits behind a small port so the worker can run without a
// search backend; the default deployment uses LoggingIndex until one is
// wired in.
type IndexUpdater struct {
	posts  post.Repository
	index  PostIndex
	logger *slog.Logger
}

// PostIndex is the search backend the updater writes to.
type PostIndex interface {
	Index(ctx context.Context, p *post.Post) error
	Remove(ctx context.Context, postID int64) error
}

// NewIndexUpdater creates an IndexUpdater.
func NewIndexUpdater(posts post.Repository, index PostIndex, logger *slog.Logger) *IndexUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexUpdater{posts: posts, index: index, logger: logger}
}

// IndexPost loads the post and writes it to the index. A post that vanished
// between publish and consumption is treated as already removed.
func (h *IndexUpdater) IndexPost(ctx context.Context, postID int64) error {
	p, err := h.posts.ByID(ctx, postID)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("post gone before indexing, removing instead", "post_id", postID)
			return h.index.Remove(ctx, postID)
		}
		return err
	}
	return h.index.Index(ctx, p)
}

// RemovePost drops the post from the index.
func (h *IndexUpdater) RemovePost(ctx context.Context, postID int64) error {
	return h.index.Remove(ctx, postID)
}

// LoggingIndex is a PostIndex that only records what it would have indexed.
type LoggingIndex struct {
	logger *slog.Logger
}

// NewLoggingIndex creates a LoggingIndex.
func NewLoggingIndex(logger *slog.Logger) *LoggingIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingIndex{logger: logger}
}

// Index logs the post that would be indexed.
func (i *LoggingIndex) Index(_ context.Context, p *post.Post) error {
	i.logger.Info("index post", "post_id", p.ID, "title", p.Title)
	return nil
}

// Remove logs the post that would be dropped.
func (i *LoggingIndex) Remove(_ context.Context, postID int64) error {
	i.logger.Info("remove post from index", "post_id", postID)
	return nil
}
