package midwire

import (
	"demo/pkg/log"
	"demo/pkg/metrics"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLog 每个请求一行日志，出错时用 Error 级别
func RequestLog(l *log.Logger) echo.MiddlewareFunc {
	logger := l.WithModule("http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			metrics.RequestCount.WithLabelValues(v.Method, v.RoutePath, strconv.Itoa(v.Status)).Inc()
			metrics.RequestDuration.WithLabelValues(v.Method, v.RoutePath).Observe(v.Latency.Seconds())
			if v.Error != nil {
				logger.Error("request",
					log.String("method", v.Method),
					log.String("uri", v.URI),
					log.Int("status", v.Status),
					log.Duration("latency", v.Latency),
					log.Error(v.Error),
				)
				return nil
			}
			logger.Info("request",
				log.String("method", v.Method),
				log.String("uri", v.URI),
				log.Int("status", v.Status),
				log.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}

func Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}
