package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
	"github.com/lvyanru/weather-apiserver/internal/handler/dto"
)

// SessionHandler serves the session REST resources.
type SessionHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(usecase domain.ChatUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *SessionHandler) GetSession(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	sess, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, toSessionResponse(sess))
}

// GetHistory handles GET /api/v1/sessions/:id/history.
func (h *SessionHandler) GetHistory(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	history, err := h.usecase.GetHistory(ctx, sessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	messages := make([]dto.HistoryMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, dto.HistoryMessage{
			ID:        msg.ID,
			Type:      string(msg.Type),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.UnixMilli(),
		})
	}

	SuccessResponse(c, dto.HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// DeleteSession handles DELETE /api/v1/sessions/:id. Deleting an unknown id
// still returns 204.
func (h *SessionHandler) DeleteSession(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}

	NoContentResponse(c)
}

func toSessionResponse(sess entity.Session) dto.SessionResponse {
	prefs := sess.Context.Preferences
	return dto.SessionResponse{
		SessionID:       sess.SessionID,
		UserID:          sess.UserID,
		CreatedAt:       sess.CreatedAt.UnixMilli(),
		LastActivity:    sess.LastActivity.UnixMilli(),
		CurrentLocation: sess.Context.CurrentLocation,
		RecentLocations: sess.Context.RecentLocations,
		Preferences: map[string]string{
			"temperature_unit":   prefs.TemperatureUnit,
			"wind_speed_unit":    prefs.WindSpeedUnit,
			"precipitation_unit": prefs.PrecipitationUnit,
			"timezone":           prefs.Timezone,
		},
	}
}
