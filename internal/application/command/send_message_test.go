package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forum-hub/forum-engagement/internal/domain/notification"
	"github.com/forum-hub/forum-engagement/internal/domain/shared"
)

// memLedger is an in-memory MessageRepository covering what the command
// handlers exercise.
type memLedger struct {
	messages []notification.Message
	nextID   int64
}

func (m *memLedger) Insert(_ context.Context, msg *notification.Message) error {
	m.nextID++
	msg.ID = m.nextID
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memLedger) MarkStatus(_ context.Context, ids []int64, status notification.ReadState) (int64, error) {
	var changed int64
	for _, id := range ids {
		for i := range m.messages {
			if m.messages[i].ID != id {
				continue
			}
			if m.messages[i].Status == status || m.messages[i].Status == notification.StateDeleted {
				continue
			}
			m.messages[i].Status = status
			changed++
		}
	}
	return changed, nil
}

func (m *memLedger) UnreadCount(_ context.Context, userID int64, conversationID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.ToID != userID || msg.Status != notification.StateUnread || msg.IsNotice() {
			continue
		}
		if conversationID != "" && msg.ConversationID != conversationID {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memLedger) ConversationCount(context.Context, int64) (int64, error) { return 0, nil }
func (m *memLedger) Conversations(context.Context, int64, int, int) ([]notification.Message, error) {
	return nil, nil
}
func (m *memLedger) LetterCount(context.Context, string) (int64, error) { return 0, nil }
func (m *memLedger) Letters(context.Context, string, int, int) ([]notification.Message, error) {
	return nil, nil
}
func (m *memLedger) NoticeUnreadCount(context.Context, int64, string) (int64, error) { return 0, nil }
func (m *memLedger) LatestNotice(context.Context, int64, string) (*notification.Message, error) {
	return nil, shared.NewDomainError("notification", "LatestNotice", shared.ErrNotFound, "no notice")
}
func (m *memLedger) NoticeCount(context.Context, int64, string) (int64, error) { return 0, nil }
func (m *memLedger) Notices(context.Context, int64, string, int, int) ([]notification.Message, error) {
	return nil, nil
}

func TestSendMessage_StoresUnderPairConversation(t *testing.T) {
	ctx := context.Background()
	ledger := &memLedger{}
	handler := NewSendMessageHandler(ledger, nil)

	msg, err := handler.Handle(ctx, SendMessageCommand{FromID: 9, ToID: 5, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "5_9", msg.ConversationID)
	assert.Equal(t, notification.StateUnread, msg.Status)

	// The reverse direction lands in the same conversation.
	reply, err := handler.Handle(ctx, SendMessageCommand{FromID: 5, ToID: 9, Content: "hi back"})
	require.NoError(t, err)
	assert.Equal(t, msg.ConversationID, reply.ConversationID)
}

func TestSendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	handler := NewSendMessageHandler(&memLedger{}, nil)

	_, err := handler.Handle(ctx, SendMessageCommand{FromID: 5, ToID: 5, Content: "self"})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = handler.Handle(ctx, SendMessageCommand{FromID: notification.SystemUserID, ToID: 5, Content: "x"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = handler.Handle(ctx, SendMessageCommand{FromID: 9, ToID: 5, Content: "   "})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = handler.Handle(ctx, SendMessageCommand{FromID: 0, ToID: 5, Content: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestMarkRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	ledger := &memLedger{}
	send := NewSendMessageHandler(ledger, nil)
	mark := NewMarkReadHandler(ledger, nil)

	m1, err := send.Handle(ctx, SendMessageCommand{FromID: 9, ToID: 5, Content: "one"})
	require.NoError(t, err)
	m2, err := send.Handle(ctx, SendMessageCommand{FromID: 9, ToID: 5, Content: "two"})
	require.NoError(t, err)

	unread, err := ledger.UnreadCount(ctx, 5, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	changed, err := mark.Handle(ctx, MarkReadCommand{IDs: []int64{m1.ID, m2.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	unread, err = ledger.UnreadCount(ctx, 5, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Re-marking changes nothing.
	changed, err = mark.Handle(ctx, MarkReadCommand{IDs: []int64{m1.ID, m2.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}
