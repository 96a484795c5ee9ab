package eventhandler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// insertRecorder captures inserted messages; the other ledger reads are
// unused by the materializer.
type insertRecorder struct {
	notification.MessageRepository
	inserted []notification.Message
}

func (r *insertRecorder) Insert(_ context.Context, m *notification.Message) error {
	m.ID = int64(len(r.inserted) + 1)
	r.inserted = append(r.inserted, *m)
	return nil
}

func TestNoticeMaterializer_StoresNotice(t *testing.T) {
	ctx := context.Background()
	repo := &insertRecorder{}
	h := NewNoticeMaterializer(repo, nil)

	ev := shared.NewEvent(shared.TopicLike, 7, shared.KindPost, 42, 3).WithData("post_id", "42")
	require.NoError(t, h.Materialize(ctx, ev))

	require.Len(t, repo.inserted, 1)
	msg := repo.inserted[0]
	assert.Equal(t, notification.SystemUserID, msg.FromID)
	assert.Equal(t, int64(3), msg.ToID)
	assert.Equal(t, "like", msg.ConversationID)
	assert.Equal(t, notification.StateUnread, msg.Status)
	assert.True(t, msg.IsNotice())

	var payload struct {
		ActorID    int64             `json:"actor_id"`
		EntityKind int               `json:"entity_kind"`
		EntityID   int64             `json:"entity_id"`
		Data       map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Content), &payload))
	assert.Equal(t, int64(7), payload.ActorID)
	assert.Equal(t, 1, payload.EntityKind)
	assert.Equal(t, int64(42), payload.EntityID)
	assert.Equal(t, "42", payload.Data["post_id"])
}

func TestNoticeMaterializer_SkipsSelfAction(t *testing.T) {
	ctx := context.Background()
	repo := &insertRecorder{}
	h := NewNoticeMaterializer(repo, nil)

	ev := shared.NewEvent(shared.TopicLike, 3, shared.KindPost, 42, 3)
	require.NoError(t, h.Materialize(ctx, ev))
	assert.Empty(t, repo.inserted)
}

func TestNoticeMaterializer_SkipsNonNoticeTopics(t *testing.T) {
	ctx := context.Background()
	repo := &insertRecorder{}
	h := NewNoticeMaterializer(repo, nil)

	require.NoError(t, h.Materialize(ctx, shared.NewEvent(shared.TopicPublish, 3, shared.KindPost, 42, 0)))
	require.NoError(t, h.Materialize(ctx, shared.NewEvent(shared.TopicDelete, 3, shared.KindPost, 42, 0)))
	assert.Empty(t, repo.inserted)
}

func TestNoticeMaterializer_SkipsMissingRecipient(t *testing.T) {
	ctx := context.Background()
	repo := &insertRecorder{}
	h := NewNoticeMaterializer(repo, nil)

	// Following a post has no notified author.
	require.NoError(t, h.Materialize(ctx, shared.NewEvent(shared.TopicFollow, 7, shared.KindPost, 42, 0)))
	assert.Empty(t, repo.inserted)
}
