package domain

import (
	"context"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// ============ DTOs used between handler and usecase ============

// ChatRequest is an inbound chat turn.
type ChatRequest struct {
	SessionID string
	UserID    string
	Message   string
}

// ChatResponse is the result of a non-streaming chat turn.
type ChatResponse struct {
	SessionID string
	Response  *entity.AiResponse
}

// ============ Collaborator interfaces ============

// GenerationClient is the external answer-generation backend. It receives a
// fully enriched prompt and returns the complete answer. Calls may be slow
// and may fail; implementations bound them with the request context.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (*entity.AiResponse, error)
}

// SessionStore is the concurrent keyed store of sessions and their
// append-only message histories. Get and Update on a missing or expired id
// return a not-found error; updates to the same id serialize.
type SessionStore interface {
	GetOrCreate(sessionID, userID string) (entity.Session, error)
	Get(sessionID string) (entity.Session, error)
	Update(sessionID string, mutate func(entity.Session) entity.Session) (entity.Session, error)
	AppendHistory(sessionID string, msgs ...entity.Message) error
	History(sessionID string) ([]entity.Message, error)
	Delete(sessionID string) bool
}

// ============ Usecase interface ============

// ChatUsecase ties the session store, prompt enrichment, and the generation
// backend into the request/response and streaming chat flows.
type ChatUsecase interface {
	// Chat runs one synchronous turn and returns the full response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStreaming runs one turn and delivers the answer as an ordered
	// sequence of protocol events. The channel always ends with exactly one
	// terminal event unless the consumer cancels ctx first.
	ChatStreaming(ctx context.Context, req *ChatRequest) (<-chan entity.StreamMessage, error)

	// GetSession returns the session, or not-found if absent or expired.
	GetSession(ctx context.Context, sessionID string) (entity.Session, error)

	// GetHistory returns the session's message history in append order.
	GetHistory(ctx context.Context, sessionID string) ([]entity.Message, error)

	// DeleteSession removes the session. Deleting an unknown id is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// Heartbeat emits a fixed number of ping events at a fixed interval,
	// independent of any chat stream.
	Heartbeat(ctx context.Context) <-chan entity.StreamMessage
}
