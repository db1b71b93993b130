// Package streaming turns a completed answer into an ordered sequence of
// typed protocol events on a cancelable channel. The answer is delivered in
// fixed-size fragments with an optional pacing delay between them; this
// simulates incremental delivery, the backend itself is called once.
package streaming

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// Default chunking policy.
const (
	DefaultChunkSize = 50
	DefaultBuffer    = 16
)

// Stream error codes surfaced on terminal error events.
const (
	ErrCodeGeneration = "GENERATION_FAILED"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Config controls the chunking and heartbeat policy.
type Config struct {
	ChunkSize int           // characters per chunk; <=0 means DefaultChunkSize
	Pacing    time.Duration // delay between chunk emissions; 0 disables pacing
	Buffer    int           // event channel buffer; <=0 means DefaultBuffer

	HeartbeatCount    int           // pings per heartbeat stream
	HeartbeatInterval time.Duration // delay between pings
}

// Generator produces the complete answer for one stream. It is the only
// blocking step; the engine hands it the stream's context so cancellation
// reaches the backend call.
type Generator func(ctx context.Context) (*entity.AiResponse, error)

// Engine owns the lifetime of individual streams. Each Stream call spawns
// one producer goroutine that is the sole writer of its event channel,
// which makes the exactly-one-terminal-event guarantee structural.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates a streaming engine with the given policy.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Stream opens one stream. The start event is emitted before any generation
// work; the channel is closed after the terminal event, or silently once
// cancellation is observed. No event follows cancellation and cancellation
// never surfaces as an error event.
func (e *Engine) Stream(ctx context.Context, streamID string, generate Generator) <-chan entity.StreamMessage {
	out := make(chan entity.StreamMessage, e.cfg.Buffer)
	go e.produce(ctx, streamID, generate, out)
	return out
}

func (e *Engine) produce(ctx context.Context, streamID string, generate Generator, out chan<- entity.StreamMessage) {
	defer close(out)

	started := time.Now()
	meta := entity.StreamMetadata{
		StreamID:    streamID,
		ContentType: "text/plain",
		Encoding:    "utf-8",
	}

	if !e.send(ctx, out, entity.StreamMessage{
		Type:      entity.StreamMessageStart,
		Payload:   "stream started",
		Metadata:  meta,
		Timestamp: time.Now(),
	}) {
		return
	}

	resp, err := generate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Debug("stream canceled during generation", "stream_id", streamID)
			return
		}
		e.sendError(ctx, out, streamID, meta, ErrCodeGeneration, err)
		return
	}
	if resp == nil {
		e.sendError(ctx, out, streamID, meta, ErrCodeInternal, fmt.Errorf("generator returned no response"))
		return
	}

	chunks := splitChunks(resp.Content, e.cfg.ChunkSize)
	meta = meta.WithTotalChunks(len(chunks))

	if !e.send(ctx, out, entity.StreamMessage{
		Type:      entity.StreamMessageMetadata,
		Metadata:  meta,
		Timestamp: time.Now(),
	}) {
		return
	}

	for i, content := range chunks {
		if i > 0 && e.cfg.Pacing > 0 {
			if !e.pace(ctx) {
				e.logger.Debug("stream canceled between chunks", "stream_id", streamID, "chunk", i)
				return
			}
		}

		last := i == len(chunks)-1
		if !e.send(ctx, out, entity.StreamMessage{
			Type: entity.StreamMessageChunk,
			Chunk: &entity.StreamChunk{
				ChunkID:     i,
				Content:     content,
				IsLastChunk: last,
				Timestamp:   time.Now(),
			},
			Metadata:  meta.WithProgress(i + 1),
			Timestamp: time.Now(),
		}) {
			return
		}
	}

	final := map[string]string{
		"latency_ms": fmt.Sprintf("%d", time.Since(started).Milliseconds()),
	}
	for k, v := range resp.Metadata {
		final[k] = v
	}

	e.send(ctx, out, entity.StreamMessage{
		Type:      entity.StreamMessageComplete,
		Metadata:  meta.WithProgress(len(chunks)),
		Meta:      final,
		Timestamp: time.Now(),
	})
}

// send delivers one event unless cancellation is observed first.
func (e *Engine) send(ctx context.Context, out chan<- entity.StreamMessage, msg entity.StreamMessage) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- msg:
		return true
	}
}

func (e *Engine) sendError(ctx context.Context, out chan<- entity.StreamMessage, streamID string, meta entity.StreamMetadata, code string, err error) {
	e.logger.Warn("stream failed", "stream_id", streamID, "code", code, "error", err)
	e.send(ctx, out, entity.StreamMessage{
		Type:      entity.StreamMessageError,
		Error:     &entity.StreamError{Code: code, Message: err.Error()},
		Metadata:  meta,
		Timestamp: time.Now(),
	})
}

// pace waits out the inter-chunk delay, releasing the timer promptly on
// cancellation.
func (e *Engine) pace(ctx context.Context) bool {
	timer := time.NewTimer(e.cfg.Pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// splitChunks slices text into size-character fragments, left to right.
// Fragments are cut on rune boundaries so multi-byte text stays valid
// UTF-8 in every chunk. An empty text still yields one (empty) chunk so
// every stream has exactly one last chunk.
func splitChunks(text string, size int) []string {
	if text == "" {
		return []string{""}
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
