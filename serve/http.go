package serve

import (
	"context"
	"demo/config"
	"demo/hander/midwire"
	"demo/pkg/log"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type HttpServer struct {
	Echo   *echo.Echo
	logger *log.Logger
	config *config.Config
}

func NewHttpServer(l *log.Logger, c *config.Config) *HttpServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(midwire.Recover(), midwire.RequestLog(l))
	return &HttpServer{
		Echo:   e,
		logger: l.WithModule("HttpServer"),
		config: c,
	}
}

// Start 阻塞直到服务关闭；正常 Shutdown 返回 nil
func (s *HttpServer) Start() error {
	s.logger.Info("http server listening", log.String("addr", s.config.Port))
	if err := s.Echo.Start(s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
