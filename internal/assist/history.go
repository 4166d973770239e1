package assist

import (
	"errors"

	"taskflow-cli/internal/store"
)

// historyWindow caps how many prior turns accompany each request, keeping
// the context from growing without bound.
const historyWindow = 10

const greeting = "Hi! I'm your task management assistant. I can help you manage tasks, offer suggestions or answer questions. What can I do for you?"

// Greeting is the canned opening message of a fresh conversation.
func Greeting() Message {
	return Message{Role: RoleAssistant, Content: greeting}
}

// LoadHistory reads the persisted conversation, seeding a fresh one with the
// greeting when none exists.
func LoadHistory(s store.Store) ([]Message, error) {
	var msgs []Message
	err := s.GetCell(store.ChatHistoryCellKey, &msgs)
	if errors.Is(err, store.ErrCellNotFound) {
		return []Message{Greeting()}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []Message{Greeting()}, nil
	}
	return msgs, nil
}

// SaveHistory persists the conversation.
func SaveHistory(s store.Store, msgs []Message) error {
	return s.SetCell(store.ChatHistoryCellKey, msgs)
}

// ClearHistory drops the conversation; the next load starts over with the
// greeting.
func ClearHistory(s store.Store) error {
	return s.DeleteCell(store.ChatHistoryCellKey)
}

// TrailingTurns returns the last n messages.
func TrailingTurns(msgs []Message, n int) []Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
