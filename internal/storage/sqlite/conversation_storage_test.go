package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/models"
)

func newTestStorage(t *testing.T) *ConversationStorage {
	t.Helper()
	db, err := NewSQLiteDB(&common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
		WALMode:       true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewConversationStorage(db, nil)
}

func TestConversation_CreateAndGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "Weekly notes")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "Weekly notes", conv.Name)

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, conv.Name, got.Name)
}

func TestConversation_DefaultName(t *testing.T) {
	s := newTestStorage(t)

	conv, err := s.CreateConversation(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conv.Name)
}

func TestConversation_GetMissing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetConversation(context.Background(), "conv_missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConversation_Rename(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "old")
	require.NoError(t, err)

	require.NoError(t, s.RenameConversation(ctx, conv.ID, "new"))

	got, err := s.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)

	err = s.RenameConversation(ctx, "conv_missing", "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConversation_DeleteCascadesMessages(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "to delete")
	require.NoError(t, err)
	require.NoError(t, s.AddMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        "hello",
	}))

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))

	_, err = s.GetConversation(ctx, conv.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	messages, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessages_RoundTripInOrder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "chat")
	require.NoError(t, err)

	turns := []struct{ role, content string }{
		{models.RoleUser, "first question"},
		{models.RoleAssistant, "first answer"},
		{models.RoleUser, "second question"},
	}
	for _, turn := range turns {
		require.NoError(t, s.AddMessage(ctx, &models.Message{
			ConversationID: conv.ID,
			Role:           turn.role,
			Content:        turn.content,
		}))
	}

	messages, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, turn := range turns {
		assert.Equal(t, turn.role, messages[i].Role)
		assert.Equal(t, turn.content, messages[i].Content)
		assert.NotEmpty(t, messages[i].ID)
	}
}

func TestListConversations_MostRecentFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.CreateConversation(ctx, "first")
	require.NoError(t, err)
	_, err = s.CreateConversation(ctx, "second")
	require.NoError(t, err)

	// Touch the first conversation so it sorts to the top
	require.NoError(t, s.RenameConversation(ctx, first.ID, "first touched"))

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestAddMessage_RequiresConversationID(t *testing.T) {
	s := newTestStorage(t)

	err := s.AddMessage(context.Background(), &models.Message{Role: models.RoleUser, Content: "x"})
	assert.Error(t, err)
}
