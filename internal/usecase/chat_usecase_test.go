package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
	"github.com/lvyanru/weather-apiserver/internal/session"
	"github.com/lvyanru/weather-apiserver/internal/streaming"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock() *stubClock {
	return &stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type stubGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (*entity.AiResponse, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return entity.NewAiResponse(g.answer, nil, map[string]string{"model": "stub"}, time.Now())
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func newTestUsecase(t *testing.T, gen *stubGenerator) (domain.ChatUsecase, *session.Store) {
	t.Helper()
	store := session.NewStore(session.Config{TTL: time.Hour}, newStubClock(), nil)
	t.Cleanup(store.Close)
	engine := streaming.NewEngine(streaming.Config{ChunkSize: 50}, nil)
	return NewChatUsecase(store, gen, engine, newStubClock(), nil), store
}

func TestChatHappyPath(t *testing.T) {
	gen := &stubGenerator{answer: "It's sunny"}
	uc, _ := newTestUsecase(t, gen)

	resp, err := uc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "sess-1",
		UserID:    "user-1",
		Message:   "What's the weather in Zurich?",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "It's sunny", resp.Response.Content)

	// The extracted location lands in the session context, normalized.
	sess, err := uc.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "zurich", sess.Context.CurrentLocation)

	// The prompt handed to the backend carries the location clause.
	assert.Contains(t, gen.lastPrompt(), "zurich")
	assert.Contains(t, gen.lastPrompt(), "What's the weather in Zurich?")

	history, err := uc.GetHistory(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.MessageTypeUser, history[0].Type)
	assert.Equal(t, "What's the weather in Zurich?", history[0].Content)
	assert.Equal(t, entity.MessageTypeAssistant, history[1].Type)
	assert.Equal(t, "It's sunny", history[1].Content)
}

func TestChatValidation(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubGenerator{answer: "ok"})

	tests := []struct {
		name string
		req  *domain.ChatRequest
	}{
		{"blank session id", &domain.ChatRequest{SessionID: "  ", Message: "hi"}},
		{"blank message", &domain.ChatRequest{SessionID: "s", Message: ""}},
		{"nil request", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Chat(context.Background(), tt.req)
			assert.True(t, domain.IsInvalidInput(err))
		})
	}
}

func TestChatGenerationFailureLeavesHistoryEmpty(t *testing.T) {
	gen := &stubGenerator{err: errors.New("backend down")}
	uc, _ := newTestUsecase(t, gen)

	_, err := uc.Chat(context.Background(), &domain.ChatRequest{SessionID: "s-fail", Message: "weather in Oslo"})
	require.Error(t, err)
	assert.True(t, domain.IsGenerationFailed(err))

	history, err := uc.GetHistory(context.Background(), "s-fail")
	require.NoError(t, err)
	assert.Empty(t, history)

	// The session itself survives the failed turn.
	sess, err := uc.GetSession(context.Background(), "s-fail")
	require.NoError(t, err)
	assert.Equal(t, "oslo", sess.Context.CurrentLocation)
}

func TestChatAccumulatesHistoryAcrossTurns(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	uc, _ := newTestUsecase(t, gen)

	for i := 0; i < 3; i++ {
		_, err := uc.Chat(context.Background(), &domain.ChatRequest{SessionID: "s-multi", Message: "tell me the forecast"})
		require.NoError(t, err)
	}

	history, err := uc.GetHistory(context.Background(), "s-multi")
	require.NoError(t, err)
	assert.Len(t, history, 6)
	for i, msg := range history {
		if i%2 == 0 {
			assert.Equal(t, entity.MessageTypeUser, msg.Type)
		} else {
			assert.Equal(t, entity.MessageTypeAssistant, msg.Type)
		}
	}
}

func TestChatStreamingDeliversAnswerAndRecordsHistory(t *testing.T) {
	gen := &stubGenerator{answer: strings.Repeat("a", 70)}
	uc, _ := newTestUsecase(t, gen)

	ch, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{SessionID: "s-stream", Message: "forecast please"})
	require.NoError(t, err)

	var content strings.Builder
	var terminal entity.StreamMessageType
	for msg := range ch {
		if msg.Type == entity.StreamMessageChunk {
			content.WriteString(msg.Chunk.Content)
		}
		if msg.Type.IsTerminal() {
			terminal = msg.Type
		}
	}
	assert.Equal(t, entity.StreamMessageComplete, terminal)
	assert.Equal(t, gen.answer, content.String())

	history, err := uc.GetHistory(context.Background(), "s-stream")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.MessageTypeUser, history[0].Type)
	assert.Equal(t, entity.MessageTypeAssistant, history[1].Type)
}

func TestChatStreamingGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	uc, _ := newTestUsecase(t, gen)

	ch, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{SessionID: "s-serr", Message: "forecast"})
	require.NoError(t, err)

	var sawError bool
	for msg := range ch {
		if msg.Type == entity.StreamMessageError {
			sawError = true
		}
	}
	assert.True(t, sawError)

	history, err := uc.GetHistory(context.Background(), "s-serr")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetSessionNotFound(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubGenerator{answer: "ok"})
	_, err := uc.GetSession(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteSessionIdempotent(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubGenerator{answer: "ok"})

	_, err := uc.Chat(context.Background(), &domain.ChatRequest{SessionID: "s-del", Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteSession(context.Background(), "s-del"))
	require.NoError(t, uc.DeleteSession(context.Background(), "s-del"))

	_, err = uc.GetSession(context.Background(), "s-del")
	assert.True(t, domain.IsNotFound(err))
}

func TestHeartbeatIndependentOfSessions(t *testing.T) {
	store := session.NewStore(session.Config{TTL: time.Hour}, newStubClock(), nil)
	t.Cleanup(store.Close)
	engine := streaming.NewEngine(streaming.Config{HeartbeatCount: 2, HeartbeatInterval: time.Millisecond}, nil)
	uc := NewChatUsecase(store, &stubGenerator{answer: "ok"}, engine, newStubClock(), nil)

	var pings int
	for msg := range uc.Heartbeat(context.Background()) {
		require.Equal(t, entity.StreamMessagePing, msg.Type)
		pings++
	}
	assert.Equal(t, 2, pings)
	assert.Equal(t, 0, store.Len())
}
