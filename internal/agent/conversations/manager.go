package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/shopmate-ai/server/internal/agent/model"
)

// MessagesManager loads carried-in history for a turn and persists the
// finished turn. The workflow itself never touches the repository.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
}

func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{conversationRepo: conversationRepo}
}

// LoadHistory returns the stored history for a conversation, or nil when no
// repository is configured (the caller may supply history directly instead).
func (m *MessagesManager) LoadHistory(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	if m == nil || m.conversationRepo == nil {
		return nil, nil
	}
	history, err := m.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

// SaveTurn persists the messages the respond stage appended during the turn.
func (m *MessagesManager) SaveTurn(ctx context.Context, conversationID string, appended []*schema.Message) error {
	if m == nil || m.conversationRepo == nil {
		return nil
	}
	for _, msg := range appended {
		if msg == nil {
			continue
		}
		if err := m.conversationRepo.AddMessage(ctx, conversationID, msg); err != nil {
			return err
		}
	}
	return nil
}

// RenderWindow formats the last maxEntries history messages for an analysis
// prompt. Returns "" when there is no usable history.
func RenderWindow(messages []*schema.Message, maxEntries int) string {
	recent := trimTail(messages, maxEntries)

	var b strings.Builder
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("USER: " + msg.Content + "\n")
		case schema.Assistant:
			b.WriteString("ASSISTANT: " + msg.Content + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func trimTail(messages []*schema.Message, maxEntries int) []*schema.Message {
	if maxEntries <= 0 || len(messages) <= maxEntries {
		return messages
	}
	return messages[len(messages)-maxEntries:]
}
