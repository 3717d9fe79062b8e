package V1

import (
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/serve"
	"demo/usecase"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type ChatHander struct {
	logger  *log.Logger
	chat    *usecase.ChatUsecase
	limiter *rate.Limiter
}

func NewChatHander(s *serve.HttpServer, c *config.Config, logger *log.Logger, chat *usecase.ChatUsecase) *ChatHander {
	limit := rate.Inf
	if c.Chat.RateLimit > 0 {
		limit = rate.Limit(c.Chat.RateLimit)
	}
	h := &ChatHander{
		logger:  logger.WithModule("ChatHander"),
		chat:    chat,
		limiter: rate.NewLimiter(limit, max(c.Chat.Burst, 1)),
	}
	s.Echo.POST("/api/chat", h.Chat)
	return h
}

// Chat godoc
// @Summary 对话代理
// @Description 转发到上游对话服务（blocking 模式），返回回答和会话 id
// @Tags Chat
// @Accept  json
// @Produce json
// @Param req body domain.ChatReq true "query 和可选的 conversation_id"
// @Success 200 {object} domain.ChatResp
// @Failure 400 {object} domain.ChatErrorResp "query is required"
// @Failure 429 {object} domain.ChatErrorResp "rate limited"
// @Failure 500 {object} domain.ChatErrorResp "credential not configured or internal error"
// @Failure 502 {object} domain.ChatErrorResp "upstream error"
// @Router /api/chat [post]
func (h *ChatHander) Chat(c echo.Context) error {
	if !h.limiter.Allow() {
		return c.JSON(http.StatusTooManyRequests, domain.ChatErrorResp{Error: "Too many requests"})
	}
	if !h.chat.Configured() {
		return c.JSON(http.StatusInternalServerError, domain.ChatErrorResp{Error: h.chat.CredentialName() + " not configured"})
	}

	var req domain.ChatReq
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		h.logger.Warn("decode chat request failed", log.Error(err))
		return c.JSON(http.StatusInternalServerError, domain.ChatErrorResp{Error: "Internal server error"})
	}

	resp, err := h.chat.Chat(c.Request().Context(), &req)
	if err == nil {
		return c.JSON(http.StatusOK, resp)
	}

	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return c.JSON(http.StatusBadRequest, domain.ChatErrorResp{Error: "query is required"})
	case errors.Is(err, domain.ErrMissingCredential):
		return c.JSON(http.StatusInternalServerError, domain.ChatErrorResp{Error: h.chat.CredentialName() + " not configured"})
	case errors.As(err, &upstream):
		return c.JSON(http.StatusBadGateway, domain.ChatErrorResp{Error: "Dify API error", Status: upstream.Status})
	default:
		return c.JSON(http.StatusInternalServerError, domain.ChatErrorResp{Error: "Internal server error"})
	}
}
