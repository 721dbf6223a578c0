package chat

import (
	"fmt"

	"github.com/RainingDaemons/chateai/internal/interfaces"
	"github.com/RainingDaemons/chateai/internal/models"
)

// languageInstruction keeps the model answering in the user's language
const languageInstruction = "ALWAYS reply in the same language the user wrote their message in. " +
	"If the user mixes languages, reply in the predominant one. " +
	"Never switch language on your own."

// insufficientContextReply is the exact refusal the model is told to use
// when the retrieved context cannot answer the question
const insufficientContextReply = "I could not find enough information in the local knowledge base."

// buildSystemInstruction composes the system prompt. When RAG context is
// present the model is restricted to it, told to cite with the context's
// tag format, and given a fixed decline phrase for insufficient context.
func buildSystemInstruction(ragContext string) string {
	instruction := languageInstruction

	if ragContext != "" {
		instruction += fmt.Sprintf(
			" You are an assistant with RAG. Use EXCLUSIVELY the following context to answer. "+
				"If the context does not contain enough information, reply: %q "+
				"Cite relevant fragments with [doc:...|chunk:...] or [site:...|chunk:...] where appropriate.\n\n"+
				"### CONTEXT\n%s\n### END CONTEXT",
			insufficientContextReply, ragContext)
	}

	return instruction
}

// buildMessages prepends the system instruction to the conversation history
// and appends the new user query
func buildMessages(history []*models.Message, query, ragContext string) []interfaces.ChatMessage {
	messages := make([]interfaces.ChatMessage, 0, len(history)+2)
	messages = append(messages, interfaces.ChatMessage{
		Role:    models.RoleSystem,
		Content: buildSystemInstruction(ragContext),
	})
	for _, msg := range history {
		// Stored system turns are dropped; the instruction above is rebuilt
		// per request with the current context
		if msg.Role == models.RoleSystem {
			continue
		}
		messages = append(messages, interfaces.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, interfaces.ChatMessage{Role: models.RoleUser, Content: query})
	return messages
}
