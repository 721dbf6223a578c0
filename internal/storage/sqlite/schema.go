package sqlite

const schemaSQL = `
-- Conversations group chat history
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

-- Messages are the individual turns of a conversation
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
`

// createSchema applies the schema; all statements are idempotent
func (s *SQLiteDB) createSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
