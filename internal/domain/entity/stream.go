package entity

import "time"

// StreamMessageType is the protocol event type carried by a StreamMessage.
type StreamMessageType string

const (
	StreamMessageStart    StreamMessageType = "start"
	StreamMessageChunk    StreamMessageType = "chunk"
	StreamMessageProgress StreamMessageType = "progress"
	StreamMessageMetadata StreamMessageType = "metadata"
	StreamMessageError    StreamMessageType = "error"
	StreamMessageComplete StreamMessageType = "complete"
	StreamMessagePing     StreamMessageType = "ping"
)

// IsTerminal reports whether the event type ends a stream. Exactly one
// terminal event is emitted per stream and it is always the last one.
func (t StreamMessageType) IsTerminal() bool {
	return t == StreamMessageComplete || t == StreamMessageError
}

// StreamMetadata describes one stream's payload and delivery progress.
// Values are replaced, never mutated, as the stream advances.
type StreamMetadata struct {
	StreamID    string
	ContentType string
	Encoding    string
	Progress    *int
	TotalChunks *int
}

// WithProgress returns a copy with the progress counter set.
func (m StreamMetadata) WithProgress(progress int) StreamMetadata {
	m.Progress = &progress
	return m
}

// WithTotalChunks returns a copy with the total chunk count set.
func (m StreamMetadata) WithTotalChunks(total int) StreamMetadata {
	m.TotalChunks = &total
	return m
}

// StreamChunk is one fragment of a larger answer. Chunk ids start at zero
// and increase strictly; exactly one chunk per stream is marked last.
type StreamChunk struct {
	ChunkID     int
	Content     string
	IsLastChunk bool
	Timestamp   time.Time
}

// StreamError carries a terminal stream failure with a machine-readable code.
type StreamError struct {
	Code    string
	Message string
}

// StreamMessage is one typed protocol event delivered to a stream consumer.
// Chunk is set only for chunk events, Error only for error events; Meta
// carries response metadata and latency on the complete event.
type StreamMessage struct {
	Type      StreamMessageType
	Payload   string
	Chunk     *StreamChunk
	Error     *StreamError
	Metadata  StreamMetadata
	Meta      map[string]string
	Timestamp time.Time
}
