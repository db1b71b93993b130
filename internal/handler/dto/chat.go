// Package dto holds the HTTP wire types.
package dto

// ============ OpenAI-compatible chat API (HTTP layer) ============

// ChatCompletionMessage is one conversation message on the wire.
type ChatCompletionMessage struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatCompletionRequest is the inbound chat request.
type ChatCompletionRequest struct {
	Messages []ChatCompletionMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
	Model    string                  `json:"model,omitempty"`

	// Extension fields: the conversation is keyed by session, not by the
	// message list the client sends.
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatCompletionResponse is the non-streaming response.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"` // "chat.completion"
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   ChatCompletionUsage    `json:"usage"`

	SessionID string `json:"session_id,omitempty"`
}

// ChatCompletionChoice is one answer candidate.
type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// ChatCompletionUsage reports token counts when the backend provides them.
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ============ Typed stream events (SSE data payloads) ============

// StreamEvent is the JSON body of one SSE event. The SSE event name is the
// same value as Type.
type StreamEvent struct {
	Type      string            `json:"type"`
	Payload   string            `json:"payload,omitempty"`
	Chunk     *StreamEventChunk `json:"chunk,omitempty"`
	Error     *StreamEventError `json:"error,omitempty"`
	StreamID  string            `json:"stream_id,omitempty"`
	Progress  *int              `json:"progress,omitempty"`
	Total     *int              `json:"total_chunks,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// StreamEventChunk is one answer fragment.
type StreamEventChunk struct {
	ChunkID     int    `json:"chunk_id"`
	Content     string `json:"content"`
	IsLastChunk bool   `json:"is_last_chunk"`
}

// StreamEventError describes a failed stream.
type StreamEventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ============ Session REST resources ============

// SessionResponse is the session resource representation.
type SessionResponse struct {
	SessionID       string            `json:"session_id"`
	UserID          string            `json:"user_id,omitempty"`
	CreatedAt       int64             `json:"created_at"`
	LastActivity    int64             `json:"last_activity"`
	CurrentLocation string            `json:"current_location,omitempty"`
	RecentLocations []string          `json:"recent_locations,omitempty"`
	Preferences     map[string]string `json:"preferences"`
}

// HistoryMessage is one history entry.
type HistoryMessage struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryResponse is the ordered message history of a session.
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}
