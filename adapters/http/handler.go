package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

// Replier is the slice of the chat service the handlers depend on.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	chatService Replier
	timeout     time.Duration
}

// chatBody distinguishes a missing message from an empty one.
type chatBody struct {
	Message *string `json:"message"`
}

// NewChatHandler wires the handler. A zero timeout leaves POST /chat unbounded.
func NewChatHandler(chatService Replier, timeout time.Duration) *ChatHandler {
	return &ChatHandler{chatService: chatService, timeout: timeout}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c echo.Context) error {
	var body chatBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "request body must be a JSON object")
	}
	if body.Message == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "field 'message' is required")
	}

	// A call runs to completion even if the caller goes away.
	ctx := context.WithoutCancel(c.Request().Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, log.RequestIDKey, c.Response().Header().Get(echo.HeaderXRequestID))

	reply, err := h.chatService.Reply(ctx, *body.Message)
	if err != nil {
		log.WithCtx(ctx).Error("chat request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, domain.ErrorDetail(err))
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{Reply: reply})
}

// HealthCheck handles GET /health.
func (h *ChatHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "chatbot",
	})
}
