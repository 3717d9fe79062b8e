package V1

import (
	"demo/config"
	_ "demo/docs"
	"demo/hander"
	"demo/pkg/log"
	"demo/serve"
	"demo/usecase"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CharacterHander struct {
	*hander.BaseHandler
	logger    *log.Logger
	assets    *usecase.AssetUsecase
	wsusecase *usecase.WsUseCase
}

func NewCharacterHander(s *serve.HttpServer, c *config.Config, base *hander.BaseHandler, logger *log.Logger, assets *usecase.AssetUsecase, ws *usecase.WsUseCase) *CharacterHander {
	if c.Assets.Source != "minio" {
		s.Echo.Static(c.Assets.Prefix, c.Assets.Dir)
	}

	g := s.Echo.Group("/v1")
	g.GET("/swagger/*", echoSwagger.WrapHandler)
	h := &CharacterHander{
		BaseHandler: base,
		logger:      logger.WithModule("CharacterHander"),
		assets:      assets,
		wsusecase:   ws,
	}
	g.GET("/clips", h.Clips)
	g.GET("/ws", h.UpgradeToWS)
	return h
}

// Clips godoc
// @Summary 片段表
// @Description 返回 (mode, purpose) → 片段引用、每个片段的地址和缺失的片段
// @Tags Character
// @Produce json
// @Success 200 {object} hander.Response{data=domain.ClipCatalog}
// @Router /v1/clips [get]
func (h *CharacterHander) Clips(c echo.Context) error {
	catalog, err := h.assets.Catalog(c.Request().Context())
	if err != nil {
		return h.NewResponseWithError(c, "Failed to list clips", err)
	}
	return h.NewResponseWithData(c, catalog)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // 开发阶段放行全部来源
}

// UpgradeToWS godoc
// @Summary 升级为 WebSocket 会话
// @Description 浏览器负责两个 video 和语音，服务端驱动角色控制器
// @Tags Character
// @Success 101 {string} string "Switching Protocols"
// @Router /v1/ws [get]
func (h *CharacterHander) UpgradeToWS(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	if err := h.wsusecase.HandleWs(c.Request().Context(), ws); err != nil {
		h.logger.Warn("ws session ended with error", log.Error(err))
	}
	return nil
}
