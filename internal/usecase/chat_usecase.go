// Package usecase wires the session store, prompt enrichment, the generation
// backend, and the streaming engine into the chat flows.
package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
	"github.com/lvyanru/weather-apiserver/internal/enrich"
	"github.com/lvyanru/weather-apiserver/internal/session"
	"github.com/lvyanru/weather-apiserver/internal/streaming"
)

type chatUsecase struct {
	store  domain.SessionStore
	gen    domain.GenerationClient
	engine *streaming.Engine
	clock  session.Clock
	logger *slog.Logger
}

// NewChatUsecase creates the chat usecase.
func NewChatUsecase(store domain.SessionStore, gen domain.GenerationClient, engine *streaming.Engine, clock session.Clock, logger *slog.Logger) domain.ChatUsecase {
	if clock == nil {
		clock = session.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &chatUsecase{
		store:  store,
		gen:    gen,
		engine: engine,
		clock:  clock,
		logger: logger,
	}
}

func (u *chatUsecase) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	sess, prompt, err := u.prepareTurn(req)
	if err != nil {
		return nil, err
	}

	resp, err := u.gen.Generate(ctx, prompt)
	if err != nil {
		u.logger.Error("generation failed", "session_id", sess.SessionID, "error", err)
		return nil, domain.NewGenerationError(err)
	}

	if err := u.recordTurn(sess.SessionID, req.Message, resp); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{SessionID: sess.SessionID, Response: resp}, nil
}

func (u *chatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamMessage, error) {
	sess, prompt, err := u.prepareTurn(req)
	if err != nil {
		return nil, err
	}

	streamID := uuid.NewString()
	u.logger.Info("starting chat stream", "session_id", sess.SessionID, "stream_id", streamID)

	ch := u.engine.Stream(ctx, streamID, func(ctx context.Context) (*entity.AiResponse, error) {
		resp, err := u.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		// History is only recorded once generation has succeeded.
		if err := u.recordTurn(sess.SessionID, req.Message, resp); err != nil {
			u.logger.Warn("failed to record streamed turn", "session_id", sess.SessionID, "error", err)
		}
		return resp, nil
	})
	return ch, nil
}

func (u *chatUsecase) GetSession(ctx context.Context, sessionID string) (entity.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return entity.Session{}, domain.NewInvalidInputError("session id is required")
	}
	return u.store.Get(sessionID)
}

func (u *chatUsecase) GetHistory(ctx context.Context, sessionID string) ([]entity.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}
	return u.store.History(sessionID)
}

func (u *chatUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	if u.store.Delete(sessionID) {
		u.logger.Info("session deleted", "session_id", sessionID)
	}
	return nil
}

func (u *chatUsecase) Heartbeat(ctx context.Context) <-chan entity.StreamMessage {
	return u.engine.Heartbeat(ctx)
}

// prepareTurn validates the request, resolves the session, folds any
// extracted location into its context, and builds the enriched prompt.
func (u *chatUsecase) prepareTurn(req *domain.ChatRequest) (entity.Session, string, error) {
	if req == nil || strings.TrimSpace(req.SessionID) == "" {
		return entity.Session{}, "", domain.NewInvalidInputError("session id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return entity.Session{}, "", domain.NewInvalidInputError("message must not be empty")
	}

	sess, err := u.store.GetOrCreate(req.SessionID, req.UserID)
	if err != nil {
		return entity.Session{}, "", err
	}

	if loc, ok := enrich.ExtractLocation(req.Message); ok {
		sess, err = u.store.Update(sess.SessionID, func(s entity.Session) entity.Session {
			return s.WithContext(s.Context.WithLocation(loc), u.clock.Now())
		})
		if err != nil {
			return entity.Session{}, "", err
		}
	}

	return sess, enrich.EnrichPrompt(req.Message, sess.Context), nil
}

// recordTurn appends the user and assistant messages, in that order, and
// refreshes the session activity timestamp.
func (u *chatUsecase) recordTurn(sessionID, userText string, resp *entity.AiResponse) error {
	now := u.clock.Now()

	userMsg, err := entity.NewMessage(uuid.NewString(), sessionID, entity.MessageTypeUser, userText, now)
	if err != nil {
		return domain.NewInternalError(err)
	}
	assistantMsg, err := entity.NewMessage(uuid.NewString(), sessionID, entity.MessageTypeAssistant, resp.Content, now)
	if err != nil {
		return domain.NewInternalError(err)
	}

	if err := u.store.AppendHistory(sessionID, userMsg, assistantMsg); err != nil {
		return err
	}
	if _, err := u.store.Update(sessionID, func(s entity.Session) entity.Session {
		return s.Touch(now)
	}); err != nil {
		return err
	}
	return nil
}
