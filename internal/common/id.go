package common

import (
	"github.com/google/uuid"
)

// NewChunkID generates a unique chunk identifier
func NewChunkID() string {
	return uuid.New().String()
}

// NewConversationID generates a unique conversation identifier
// Format: conv_<uuid>
func NewConversationID() string {
	return "conv_" + uuid.New().String()
}

// NewMessageID generates a unique message identifier
// Format: msg_<uuid>
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}
