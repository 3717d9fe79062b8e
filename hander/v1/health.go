package V1

import (
	"demo/serve"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthHander struct {
}

func NewHealthHander(s *serve.HttpServer) *HealthHander {
	g := s.Echo.Group("/v1")
	g.GET("/health", Health)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return &HealthHander{}
}

// Health godoc
// @Summary 健康检查
// @Tags Health
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /v1/health [get]
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
