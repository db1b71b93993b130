// Package types holds the CLI's wire types for talking to the API server.
package types

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatRequest represents a chat request
type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	SessionID string        `json:"session_id,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
}

// StreamEvent is one typed SSE event from the chat stream.
type StreamEvent struct {
	Type      string            `json:"type"`
	Payload   string            `json:"payload,omitempty"`
	Chunk     *StreamChunk      `json:"chunk,omitempty"`
	Error     *StreamError      `json:"error,omitempty"`
	StreamID  string            `json:"stream_id,omitempty"`
	Progress  *int              `json:"progress,omitempty"`
	Total     *int              `json:"total_chunks,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Event type values carried in StreamEvent.Type.
const (
	EventStart    = "start"
	EventChunk    = "chunk"
	EventProgress = "progress"
	EventMetadata = "metadata"
	EventError    = "error"
	EventComplete = "complete"
	EventPing     = "ping"
)

// StreamChunk is one answer fragment.
type StreamChunk struct {
	ChunkID     int    `json:"chunk_id"`
	Content     string `json:"content"`
	IsLastChunk bool   `json:"is_last_chunk"`
}

// StreamError describes a failed stream.
type StreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the server's response envelope.
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// SessionData is the session resource.
type SessionData struct {
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

// HistoryData is the ordered history of a session.
type HistoryData struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}
