package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

func TestConversationID_Symmetric(t *testing.T) {
	assert.Equal(t, "5_9", ConversationID(5, 9))
	assert.Equal(t, "5_9", ConversationID(9, 5))
	assert.Equal(t, ConversationID(123, 45), ConversationID(45, 123))
}

func TestNoticeConversationID(t *testing.T) {
	assert.Equal(t, "like", NoticeConversationID(shared.TopicLike))
	assert.Equal(t, "comment", NoticeConversationID(shared.TopicComment))
}

func TestMessage_IsNotice(t *testing.T) {
	assert.True(t, Message{FromID: SystemUserID}.IsNotice())
	assert.False(t, Message{FromID: 5}.IsNotice())
}

func TestReadState_IsValid(t *testing.T) {
	assert.True(t, StateUnread.IsValid())
	assert.True(t, StateRead.IsValid())
	assert.True(t, StateDeleted.IsValid())
	assert.False(t, ReadState(7).IsValid())
}
