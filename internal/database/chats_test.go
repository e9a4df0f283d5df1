package database

import (
	"context"
	"testing"

	"trailmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateChat_OrderInsensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	second, err := db.FindOrCreateChat(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.ElementsMatch(t, []int64{1, 2}, second.Participants)
}

func TestGetChat_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetChat(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserChats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)
	_, err = db.FindOrCreateChat(ctx, 3, 1)
	require.NoError(t, err)
	_, err = db.FindOrCreateChat(ctx, 4, 5)
	require.NoError(t, err)

	chats, err := db.GetUserChats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestCreateMessage_UpdatesLastMessage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	chat, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	message := &models.Message{ChatID: chat.ID, SenderID: 1, Content: "is it still available?"}
	require.NoError(t, db.CreateMessage(ctx, message))
	require.NotZero(t, message.ID)

	got, err := db.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "is it still available?", got.LastMessage)
}

func TestGetChatMessages_Ordering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	chat, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, db.CreateMessage(ctx, &models.Message{ChatID: chat.ID, SenderID: 1, Content: content}))
	}

	messages, err := db.GetChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestMarkMessageRead_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	chat, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	message := &models.Message{ChatID: chat.ID, SenderID: 1, Content: "hello"}
	require.NoError(t, db.CreateMessage(ctx, message))

	require.NoError(t, db.MarkMessageRead(ctx, message.ID, 2))
	require.NoError(t, db.MarkMessageRead(ctx, message.ID, 2))

	got, err := db.GetMessage(ctx, message.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got.ReadBy)
}

func TestMarkMessageRead_NotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.MarkMessageRead(context.Background(), 999, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkChatRead_SkipsOwnMessages(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	chat, err := db.FindOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	mine := &models.Message{ChatID: chat.ID, SenderID: 2, Content: "mine"}
	theirs := &models.Message{ChatID: chat.ID, SenderID: 1, Content: "theirs"}
	require.NoError(t, db.CreateMessage(ctx, mine))
	require.NoError(t, db.CreateMessage(ctx, theirs))

	require.NoError(t, db.MarkChatRead(ctx, chat.ID, 2))

	gotMine, err := db.GetMessage(ctx, mine.ID)
	require.NoError(t, err)
	assert.Empty(t, gotMine.ReadBy)

	gotTheirs, err := db.GetMessage(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, gotTheirs.ReadBy)
}
