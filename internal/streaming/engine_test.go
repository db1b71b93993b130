package streaming

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

func collect(ch <-chan entity.StreamMessage) []entity.StreamMessage {
	var msgs []entity.StreamMessage
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs
}

func fixedGenerator(content string) Generator {
	return func(ctx context.Context) (*entity.AiResponse, error) {
		return entity.NewAiResponse(content, nil, map[string]string{"model": "test"}, time.Now())
	}
}

func TestStreamChunkingBoundaries(t *testing.T) {
	engine := NewEngine(Config{ChunkSize: 50}, nil)
	content := strings.Repeat("x", 120)

	msgs := collect(engine.Stream(context.Background(), "s-1", fixedGenerator(content)))

	require.Len(t, msgs, 6)
	assert.Equal(t, entity.StreamMessageStart, msgs[0].Type)
	assert.Equal(t, entity.StreamMessageMetadata, msgs[1].Type)
	require.NotNil(t, msgs[1].Metadata.TotalChunks)
	assert.Equal(t, 3, *msgs[1].Metadata.TotalChunks)

	var chunks []*entity.StreamChunk
	for _, m := range msgs {
		if m.Type == entity.StreamMessageChunk {
			chunks = append(chunks, m.Chunk)
		}
	}
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Content, 50)
	assert.Len(t, chunks[1].Content, 50)
	assert.Len(t, chunks[2].Content, 20)
	assert.Equal(t, content, chunks[0].Content+chunks[1].Content+chunks[2].Content)

	assert.False(t, chunks[0].IsLastChunk)
	assert.False(t, chunks[1].IsLastChunk)
	assert.True(t, chunks[2].IsLastChunk)

	assert.Equal(t, entity.StreamMessageComplete, msgs[len(msgs)-1].Type)
	assert.NotEmpty(t, msgs[len(msgs)-1].Meta["latency_ms"])
	assert.Equal(t, "test", msgs[len(msgs)-1].Meta["model"])
}

func TestStreamChunkingMultiByteContent(t *testing.T) {
	engine := NewEngine(Config{ChunkSize: 50}, nil)
	// A rune straddling the 50-character boundary must move whole into the
	// next chunk rather than being split mid-encoding.
	content := strings.Repeat("x", 49) + "ü" + "Zürich sits at 8°C, München at 3°C tonight" + strings.Repeat("é", 30)

	msgs := collect(engine.Stream(context.Background(), "s-utf8", fixedGenerator(content)))

	var chunks []*entity.StreamChunk
	for _, m := range msgs {
		if m.Type == entity.StreamMessageChunk {
			chunks = append(chunks, m.Chunk)
		}
	}
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content), "chunk %d content is invalid UTF-8", i)
		if !c.IsLastChunk {
			assert.Equal(t, 50, utf8.RuneCountInString(c.Content), "chunk %d rune count", i)
		}
		rebuilt.WriteString(c.Content)
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestStreamChunkIDsSequential(t *testing.T) {
	engine := NewEngine(Config{ChunkSize: 4}, nil)
	msgs := collect(engine.Stream(context.Background(), "s-ids", fixedGenerator("abcdefghij")))

	want := 0
	for _, m := range msgs {
		if m.Type != entity.StreamMessageChunk {
			continue
		}
		assert.Equal(t, want, m.Chunk.ChunkID)
		want++
	}
	assert.Equal(t, 3, want)
}

func TestStreamEmptyContentSingleLastChunk(t *testing.T) {
	engine := NewEngine(Config{}, nil)
	msgs := collect(engine.Stream(context.Background(), "s-empty", fixedGenerator("")))

	var lasts int
	for _, m := range msgs {
		if m.Type == entity.StreamMessageChunk {
			assert.Empty(t, m.Chunk.Content)
			if m.Chunk.IsLastChunk {
				lasts++
			}
		}
	}
	assert.Equal(t, 1, lasts)
	assert.Equal(t, entity.StreamMessageComplete, msgs[len(msgs)-1].Type)
}

func TestStreamExactlyOneTerminalEvent(t *testing.T) {
	engine := NewEngine(Config{ChunkSize: 10}, nil)

	for name, gen := range map[string]Generator{
		"success": fixedGenerator("hello there, weather fan"),
		"failure": func(ctx context.Context) (*entity.AiResponse, error) {
			return nil, errors.New("backend down")
		},
	} {
		t.Run(name, func(t *testing.T) {
			msgs := collect(engine.Stream(context.Background(), "s-term", gen))
			var terminals int
			for _, m := range msgs {
				if m.Type.IsTerminal() {
					terminals++
				}
			}
			assert.Equal(t, 1, terminals)
			assert.True(t, msgs[len(msgs)-1].Type.IsTerminal())
		})
	}
}

func TestStreamGenerationFailure(t *testing.T) {
	engine := NewEngine(Config{}, nil)
	msgs := collect(engine.Stream(context.Background(), "s-fail", func(ctx context.Context) (*entity.AiResponse, error) {
		return nil, errors.New("model unavailable")
	}))

	require.Len(t, msgs, 2)
	assert.Equal(t, entity.StreamMessageStart, msgs[0].Type)
	assert.Equal(t, entity.StreamMessageError, msgs[1].Type)
	require.NotNil(t, msgs[1].Error)
	assert.Equal(t, ErrCodeGeneration, msgs[1].Error.Code)
	assert.Contains(t, msgs[1].Error.Message, "model unavailable")
}

func TestStreamCancellationStopsEvents(t *testing.T) {
	engine := NewEngine(Config{ChunkSize: 5, Pacing: 50 * time.Millisecond, Buffer: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := engine.Stream(ctx, "s-cancel", fixedGenerator(strings.Repeat("y", 100)))

	// Drain through the first chunk, then cancel mid-stream.
	var seen []entity.StreamMessage
	for msg := range ch {
		seen = append(seen, msg)
		if msg.Type == entity.StreamMessageChunk {
			cancel()
			break
		}
	}

	// The producer stops without a terminal event; at most events already
	// buffered before cancellation may still arrive.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				for _, m := range seen {
					assert.False(t, m.Type.IsTerminal())
				}
				return
			}
			seen = append(seen, msg)
		case <-timeout:
			t.Fatal("stream channel was not closed after cancellation")
		}
	}
}

func TestStreamCancellationDuringGeneration(t *testing.T) {
	engine := NewEngine(Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := engine.Stream(ctx, "s-genc", func(ctx context.Context) (*entity.AiResponse, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	msgs := collect(ch)
	for _, m := range msgs {
		assert.NotEqual(t, entity.StreamMessageError, m.Type)
		assert.False(t, m.Type.IsTerminal())
	}
}

func TestHeartbeatEmitsFixedCount(t *testing.T) {
	engine := NewEngine(Config{HeartbeatCount: 3, HeartbeatInterval: time.Millisecond}, nil)
	msgs := collect(engine.Heartbeat(context.Background()))

	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, entity.StreamMessagePing, m.Type)
		assert.Contains(t, m.Payload, "ping")
	}
}

func TestHeartbeatCancellation(t *testing.T) {
	engine := NewEngine(Config{HeartbeatCount: 100, HeartbeatInterval: 20 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch := engine.Heartbeat(ctx)
	<-ch
	cancel()

	var extra int
	for range ch {
		extra++
	}
	assert.Less(t, extra, 100)
}
