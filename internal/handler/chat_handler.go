package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/google/uuid"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
	"github.com/lvyanru/weather-apiserver/internal/handler/dto"
)

const defaultModelName = "weather-assistant"

// ChatHandler serves the OpenAI-compatible chat endpoint and the heartbeat
// stream.
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// CreateChatCompletion handles POST /v1/chat/completions. The last user
// message is the turn input; a missing session_id starts a fresh session.
func (h *ChatHandler) CreateChatCompletion(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatCompletionRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	if len(req.Messages) == 0 {
		BadRequestResponse(c, "messages is required")
		return
	}
	lastMessage := req.Messages[len(req.Messages)-1]
	if lastMessage.Role != "user" {
		BadRequestResponse(c, "last message must be from user")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	chatReq := &domain.ChatRequest{
		SessionID: sessionID,
		UserID:    req.UserID,
		Message:   lastMessage.Content,
	}

	h.logger.Info("chat request received",
		"session_id", sessionID,
		"stream", req.Stream,
	)

	if req.Stream {
		h.handleStreaming(ctx, c, chatReq)
	} else {
		h.handleNonStreaming(ctx, c, chatReq, req.Model)
	}
}

func (h *ChatHandler) handleNonStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest, model string) {
	resp, err := h.usecase.Chat(ctx, chatReq)
	if err != nil {
		h.logger.Error("chat failed", "session_id", chatReq.SessionID, "error", err)
		ErrorResponse(c, err)
		return
	}

	if model == "" {
		model = resp.Response.Metadata["model"]
	}
	if model == "" {
		model = defaultModelName
	}

	c.JSON(consts.StatusOK, dto.ChatCompletionResponse{
		ID:      fmt.Sprintf("chatcmpl-%d", time.Now().Unix()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []dto.ChatCompletionChoice{
			{
				Index: 0,
				Message: dto.ChatCompletionMessage{
					Role:    "assistant",
					Content: resp.Response.Content,
				},
				FinishReason: finishReason(resp.Response),
			},
		},
		Usage:     usageFrom(resp.Response),
		SessionID: resp.SessionID,
	})
}

// handleStreaming relays the typed event stream over SSE. Each protocol
// event becomes one SSE event named after its type; [DONE] closes the
// stream after the terminal event.
func (h *ChatHandler) handleStreaming(ctx context.Context, c *app.RequestContext, chatReq *domain.ChatRequest) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamCh, err := h.usecase.ChatStreaming(ctx, chatReq)
	if err != nil {
		h.logger.Error("streaming chat failed", "session_id", chatReq.SessionID, "error", err)
		ErrorResponse(c, err)
		return
	}

	c.SetStatusCode(consts.StatusOK)
	writer := sse.NewWriter(c)
	defer writer.Close()

	for msg := range streamCh {
		if err := h.writeEvent(writer, msg); err != nil {
			h.logger.Warn("client disconnected mid-stream", "session_id", chatReq.SessionID, "error", err)
			cancel()
			break
		}
		if msg.Type.IsTerminal() {
			if err := writer.WriteEvent("", "", []byte("[DONE]")); err != nil {
				h.logger.Warn("failed to write done marker", "error", err)
			}
			break
		}
	}
}

// Heartbeat handles GET /v1/heartbeat: a fixed run of ping events.
func (h *ChatHandler) Heartbeat(ctx context.Context, c *app.RequestContext) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.SetStatusCode(consts.StatusOK)
	writer := sse.NewWriter(c)
	defer writer.Close()

	for msg := range h.usecase.Heartbeat(ctx) {
		if err := h.writeEvent(writer, msg); err != nil {
			cancel()
			return
		}
	}
	if err := writer.WriteEvent("", "", []byte("[DONE]")); err != nil {
		h.logger.Warn("failed to write done marker", "error", err)
	}
}

// writeEvent serializes one protocol event. WriteEvent flushes internally.
func (h *ChatHandler) writeEvent(writer *sse.Writer, msg entity.StreamMessage) error {
	data, err := sonic.Marshal(toStreamEvent(msg))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return writer.WriteEvent("", string(msg.Type), data)
}

func toStreamEvent(msg entity.StreamMessage) dto.StreamEvent {
	ev := dto.StreamEvent{
		Type:      string(msg.Type),
		Payload:   msg.Payload,
		StreamID:  msg.Metadata.StreamID,
		Progress:  msg.Metadata.Progress,
		Total:     msg.Metadata.TotalChunks,
		Meta:      msg.Meta,
		Timestamp: msg.Timestamp.UnixMilli(),
	}
	if msg.Chunk != nil {
		ev.Chunk = &dto.StreamEventChunk{
			ChunkID:     msg.Chunk.ChunkID,
			Content:     msg.Chunk.Content,
			IsLastChunk: msg.Chunk.IsLastChunk,
		}
	}
	if msg.Error != nil {
		ev.Error = &dto.StreamEventError{
			Code:    msg.Error.Code,
			Message: msg.Error.Message,
		}
	}
	return ev
}

func usageFrom(resp *entity.AiResponse) dto.ChatCompletionUsage {
	var usage dto.ChatCompletionUsage
	if v, err := strconv.Atoi(resp.Metadata["total_tokens"]); err == nil {
		usage.TotalTokens = v
	}
	return usage
}

func finishReason(resp *entity.AiResponse) string {
	if r := resp.Metadata["finish_reason"]; r != "" {
		return r
	}
	return "stop"
}
