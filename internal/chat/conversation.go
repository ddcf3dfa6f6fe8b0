package chat

import (
	"errors"
	"fmt"

	"familyglitch/internal/model"
)

var ErrInvalidConversation = errors.New("invalid conversation")

// ValidateConversation checks that messages are non-empty, use known roles, and
// that every tool message answers an earlier, still-unanswered call exactly once
func ValidateConversation(msgs []model.Message) error {
	if len(msgs) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrInvalidConversation)
	}

	open := make(map[string]bool)
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidConversation, i, m.Role)
		}
		switch m.Role {
		case model.RoleAssistant:
			for _, call := range m.ToolCalls {
				if call.ID == "" {
					return fmt.Errorf("%w: message %d has a tool call without id", ErrInvalidConversation, i)
				}
				if _, seen := open[call.ID]; seen {
					return fmt.Errorf("%w: duplicate tool call id %q", ErrInvalidConversation, call.ID)
				}
				open[call.ID] = true
			}
		case model.RoleTool:
			pending, seen := open[m.ToolCallID]
			if !seen {
				return fmt.Errorf("%w: message %d answers unknown call %q", ErrInvalidConversation, i, m.ToolCallID)
			}
			if !pending {
				return fmt.Errorf("%w: call %q answered twice", ErrInvalidConversation, m.ToolCallID)
			}
			open[m.ToolCallID] = false
		default:
			if len(m.ToolCalls) > 0 || m.ToolCallID != "" {
				return fmt.Errorf("%w: message %d (%s) cannot carry tool call fields", ErrInvalidConversation, i, m.Role)
			}
		}
	}
	return nil
}
