package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_DedupKeyStableAcrossCopies(t *testing.T) {
	ev := NewEvent(TopicLike, 7, KindPost, 42, 3)
	copied := ev
	assert.Equal(t, ev.DedupKey(), copied.DedupKey())
}

func TestEvent_DedupKeyDistinguishesActions(t *testing.T) {
	at := time.Now().UTC()
	a := Event{Topic: TopicLike, ActorID: 7, EntityKind: KindPost, EntityID: 42, CreatedAt: at}
	b := Event{Topic: TopicLike, ActorID: 8, EntityKind: KindPost, EntityID: 42, CreatedAt: at}
	c := Event{Topic: TopicFollow, ActorID: 7, EntityKind: KindPost, EntityID: 42, CreatedAt: at}

	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}

func TestTopic_Classification(t *testing.T) {
	for _, topic := range Topics() {
		assert.True(t, topic.IsValid())
	}
	assert.False(t, Topic("bogus").IsValid())

	assert.True(t, TopicLike.NotifiesUser())
	assert.True(t, TopicFollow.NotifiesUser())
	assert.True(t, TopicComment.NotifiesUser())
	assert.False(t, TopicPublish.NotifiesUser())
	assert.False(t, TopicDelete.NotifiesUser())
}

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(RoleUser, CapabilityLike))
	assert.False(t, HasCapability(RoleUser, CapabilityPin))
	assert.True(t, HasCapability(RoleModerator, CapabilityPin))
	assert.False(t, HasCapability(RoleModerator, CapabilityTakedown))
	assert.True(t, HasCapability(RoleAdmin, CapabilityTakedown))
}
