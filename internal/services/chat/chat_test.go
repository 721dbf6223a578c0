package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
	"github.com/RainingDaemons/chateai/internal/services/chunker"
	"github.com/RainingDaemons/chateai/internal/services/embedding"
	"github.com/RainingDaemons/chateai/internal/services/indexer"
	"github.com/RainingDaemons/chateai/internal/services/rag"
	"github.com/RainingDaemons/chateai/internal/services/vectorindex"
	"github.com/RainingDaemons/chateai/internal/storage/sqlite"
)

// scriptedLLM records the last prompt and returns a fixed answer
type scriptedLLM struct {
	answer   string
	lastSeen []interfaces.ChatMessage
}

func (l *scriptedLLM) Chat(_ context.Context, messages []interfaces.ChatMessage) (string, error) {
	l.lastSeen = messages
	return l.answer, nil
}
func (l *scriptedLLM) ModelName() string                   { return "scripted" }
func (l *scriptedLLM) HealthCheck(context.Context) error   { return nil }

type fixedLoader struct {
	docs []models.Document
}

func (l *fixedLoader) LoadDocuments(context.Context, []string) []models.Document { return l.docs }

func newTestManager(t *testing.T, docs []models.Document) *rag.Manager {
	t.Helper()
	dir := t.TempDir()
	embedder := embedding.NewLocalEmbedder("hash-v1", 64)
	store := vectorindex.NewStore(
		filepath.Join(dir, "index.bin"),
		filepath.Join(dir, "meta.jsonl"),
		embedder.ModelName(),
		nil,
	)
	idx := indexer.NewService(&fixedLoader{docs: docs}, chunker.New(), embedder, store, nil)
	m, err := rag.NewManager(idx, store, embedder, []string{dir}, 5, nil)
	require.NoError(t, err)
	if len(docs) > 0 {
		_, err = m.ReindexSync(context.Background())
		require.NoError(t, err)
	}
	return m
}

func newTestConversations(t *testing.T) interfaces.ConversationStorage {
	t.Helper()
	db, err := sqlite.NewSQLiteDB(&common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "chat.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewConversationStorage(db, nil)
}

func TestChat_RAGContextReachesPrompt(t *testing.T) {
	manager := newTestManager(t, []models.Document{{
		Path:       "/docs/stadium.md",
		Text:       "the bernabeu stadium in madrid holds eighty thousand people",
		SourceType: models.SourceTypeDoc,
		DocName:    "stadium.md",
	}})
	llm := &scriptedLLM{answer: "It holds eighty thousand."}
	svc := NewService(manager, llm, nil, nil)

	resp, err := svc.Chat(context.Background(), Request{Query: "stadium capacity?", UseRAG: true})
	require.NoError(t, err)

	assert.Equal(t, "It holds eighty thousand.", resp.Answer)
	assert.NotEmpty(t, resp.Hits)

	require.NotEmpty(t, llm.lastSeen)
	system := llm.lastSeen[0]
	assert.Equal(t, models.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "### CONTEXT")
	assert.Contains(t, system.Content, "[doc:stadium.md|chunk:0")
	assert.Contains(t, system.Content, "EXCLUSIVELY")
}

func TestChat_WithoutRAGSkipsRetrieval(t *testing.T) {
	manager := newTestManager(t, nil)
	llm := &scriptedLLM{answer: "plain answer"}
	svc := NewService(manager, llm, nil, nil)

	resp, err := svc.Chat(context.Background(), Request{Query: "hello"})
	require.NoError(t, err)

	assert.Empty(t, resp.Hits)
	system := llm.lastSeen[0]
	assert.NotContains(t, system.Content, "### CONTEXT")
	assert.Contains(t, system.Content, "same language")
}

func TestChat_EmptyIndexDegradesGracefully(t *testing.T) {
	manager := newTestManager(t, nil)
	llm := &scriptedLLM{answer: "degraded answer"}
	svc := NewService(manager, llm, nil, nil)

	resp, err := svc.Chat(context.Background(), Request{Query: "anything", UseRAG: true})
	require.NoError(t, err)

	assert.Empty(t, resp.Hits)
	// No hits means no context block; the model falls back to plain chat
	assert.NotContains(t, llm.lastSeen[0].Content, "### CONTEXT")
}

func TestChat_PersistsHistory(t *testing.T) {
	manager := newTestManager(t, nil)
	conversations := newTestConversations(t)
	llm := &scriptedLLM{answer: "the answer"}
	svc := NewService(manager, llm, conversations, nil)
	ctx := context.Background()

	conv, err := conversations.CreateConversation(ctx, "test chat")
	require.NoError(t, err)

	_, err = svc.Chat(ctx, Request{ConversationID: conv.ID, Query: "first question"})
	require.NoError(t, err)

	messages, err := conversations.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "first question", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)

	// Second turn sees the first in its prompt
	_, err = svc.Chat(ctx, Request{ConversationID: conv.ID, Query: "follow-up"})
	require.NoError(t, err)

	var sawHistory bool
	for _, msg := range llm.lastSeen {
		if msg.Role == models.RoleUser && msg.Content == "first question" {
			sawHistory = true
		}
	}
	assert.True(t, sawHistory)
	assert.Equal(t, "follow-up", llm.lastSeen[len(llm.lastSeen)-1].Content)
}

func TestChat_RejectsEmptyQuery(t *testing.T) {
	svc := NewService(newTestManager(t, nil), &scriptedLLM{}, nil, nil)

	_, err := svc.Chat(context.Background(), Request{})
	assert.Error(t, err)
}

func TestBuildSystemInstruction_DeclinePhrase(t *testing.T) {
	out := buildSystemInstruction("DOCS\n[doc:a.md|chunk:0|score:0.900]\ntext")

	assert.Contains(t, out, insufficientContextReply)
	assert.Contains(t, out, "### END CONTEXT")
	assert.True(t, strings.HasPrefix(out, languageInstruction))
}
