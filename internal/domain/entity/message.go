package entity

import (
	"fmt"
	"time"
)

// MessageType classifies who produced a message.
type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
	MessageTypeFunction  MessageType = "function"
)

// Message is one turn fragment in a session's append-only history.
// Messages are created once and never mutated.
type Message struct {
	ID        string
	SessionID string
	Type      MessageType
	Content   string
	Timestamp time.Time
	Metadata  map[string]string
}

// NewMessage creates a history message. Content may be empty, the session id
// and type may not.
func NewMessage(id, sessionID string, msgType MessageType, content string, now time.Time) (Message, error) {
	if id == "" {
		return Message{}, fmt.Errorf("message id must not be empty")
	}
	if sessionID == "" {
		return Message{}, fmt.Errorf("message session id must not be empty")
	}
	switch msgType {
	case MessageTypeUser, MessageTypeAssistant, MessageTypeSystem, MessageTypeFunction:
	default:
		return Message{}, fmt.Errorf("unknown message type: %q", msgType)
	}
	return Message{
		ID:        id,
		SessionID: sessionID,
		Type:      msgType,
		Content:   content,
		Timestamp: now,
	}, nil
}

// FunctionCall records one tool invocation made by the generation backend
// while producing a response.
type FunctionCall struct {
	Name      string
	Arguments string
	Result    string
}

// AiResponse is the immutable result of one generation call.
type AiResponse struct {
	Content       string
	FunctionCalls []FunctionCall
	Metadata      map[string]string
	Timestamp     time.Time
}

// NewAiResponse builds a response value. Every function call entry must
// carry a non-empty name.
func NewAiResponse(content string, calls []FunctionCall, metadata map[string]string, now time.Time) (*AiResponse, error) {
	for i, call := range calls {
		if call.Name == "" {
			return nil, fmt.Errorf("function call %d has an empty name", i)
		}
	}
	return &AiResponse{
		Content:       content,
		FunctionCalls: calls,
		Metadata:      metadata,
		Timestamp:     now,
	}, nil
}
