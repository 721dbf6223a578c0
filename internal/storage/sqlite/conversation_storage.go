package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// ErrNotFound is returned when a conversation or message does not exist
var ErrNotFound = sql.ErrNoRows

// ConversationStorage persists conversations and messages in SQLite
type ConversationStorage struct {
	db     *sql.DB
	logger arbor.ILogger
}

var _ interfaces.ConversationStorage = (*ConversationStorage)(nil)

// NewConversationStorage creates the storage over an open connection
func NewConversationStorage(db *SQLiteDB, logger arbor.ILogger) *ConversationStorage {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &ConversationStorage{db: db.DB(), logger: logger}
}

// CreateConversation inserts a new conversation with a generated id
func (s *ConversationStorage) CreateConversation(ctx context.Context, name string) (*models.Conversation, error) {
	if name == "" {
		name = "New conversation"
	}
	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        common.NewConversationID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.Name, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Debug().Str("conversation_id", conv.ID).Msg("Conversation created")
	return conv, nil
}

// GetConversation returns one conversation by id
func (s *ConversationStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM conversations WHERE id = ?`, id)

	conv, err := scanConversation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns all conversations, most recently updated first
func (s *ConversationStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*models.Conversation, 0)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// RenameConversation updates the display name
func (s *ConversationStorage) RenameConversation(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteConversation removes a conversation and, via cascade, its messages
func (s *ConversationStorage) DeleteConversation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	s.logger.Debug().Str("conversation_id", id).Msg("Conversation deleted")
	return nil
}

// AddMessage appends one message and touches the parent conversation
func (s *ConversationStorage) AddMessage(ctx context.Context, msg *models.Message) error {
	if msg.ConversationID == "" {
		return fmt.Errorf("message has no conversation id")
	}
	if msg.ID == "" {
		msg.ID = common.NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		msg.CreatedAt.Unix(), msg.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return tx.Commit()
}

// ListMessages returns a conversation's messages in chronological order
func (s *ConversationStorage) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM messages
		 WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.CreatedAt = time.Unix(createdAt, 0).UTC()
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var conv models.Conversation
	var createdAt, updatedAt int64
	if err := row.Scan(&conv.ID, &conv.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	conv.CreatedAt = time.Unix(createdAt, 0).UTC()
	conv.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &conv, nil
}
