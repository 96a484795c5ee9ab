// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/forum-hub/forum-engagement/internal/domain/engagement"
	"github.com/forum-hub/forum-engagement/internal/domain/post"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// scoreEpoch anchors the freshness term of the ranking formula. Scores grow
// with age relative to this instant, so newer posts need more engagement to
// outrank older high-scoring ones.
var scoreEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	featuredWeight = 75
	commentWeight  = 10
	likeWeight     = 2
	sweepPageSize  = 200
)

// RefreshScores recomputes the ranking score of every visible post.
//
// The sweep walks the latest-first listing page by page, pulls each post's
// live like count from the engagement store and writes the recomputed score
// back. score = log10(max(1, weight)) + days since epoch, where weight is
// the engagement mix plus a bonus for featured posts.
type RefreshScores struct {
	posts  post.Repository
	likes  engagement.LikeStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRefreshScores creates the job.
func NewRefreshScores(posts post.Repository, likes engagement.LikeStore, logger *slog.Logger) *RefreshScores {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScores{posts: posts, likes: likes, logger: logger, now: time.Now}
}

// Name implements scheduler.Job.
func (j *RefreshScores) Name() string { return "refresh-post-scores" }

// Run implements scheduler.Job.
func (j *RefreshScores) Run(ctx context.Context) error {
	var updated int
	for offset := 0; ; offset += sweepPageSize {
		page, err := j.posts.Page(ctx, 0, offset, sweepPageSize, post.OrderLatest)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			if err := j.refreshOne(ctx, &page[i]); err != nil {
				return err
			}
			updated++
		}

		if len(page) < sweepPageSize {
			break
		}
	}

	j.logger.Info("post scores refreshed", "posts", updated)
	return nil
}

func (j *RefreshScores) refreshOne(ctx context.Context, p *post.Post) error {
	likeCount, err := j.likes.LikeCount(ctx, shared.KindPost, p.ID)
	if err != nil {
		return err
	}

	weight := likeCount*likeWeight + p.CommentCount*commentWeight
	if p.Status == post.StatusFeatured {
		weight += featuredWeight
	}
	if weight < 1 {
		weight = 1
	}

	age := j.now().UTC().Sub(scoreEpoch).Hours() / 24
	score := math.Log10(float64(weight)) + age

	return j.posts.UpdateScore(ctx, p.ID, score)
}
