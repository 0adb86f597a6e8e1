package server

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoErrorHandler logs failed requests. Errors that are not already an
// echo.HTTPError are reported as an internal server error.
func EchoErrorHandler(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			request := c.Request()

			err := next(c)
			if err == nil {
				return nil
			}

			var he *echo.HTTPError
			if goerrors.As(err, &he) {
				if he.Internal != nil {
					logger.Warn("request failed",
						zap.String("http.uri", request.RequestURI),
						zap.Int("http.code", he.Code),
						zap.Error(he.Internal))
				}
				return err
			}

			logger.Error("error processing request",
				zap.String("http.uri", request.RequestURI),
				zap.String("error", fmt.Sprintf("%+v", err)))

			return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}
	}
}

func EchoLogger(logger *zap.Logger) echo.MiddlewareFunc {
	httpLogger := logger.Sugar()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			if !httpLogger.Level().Enabled(zap.DebugLevel) {
				return next(c)
			}

			request := c.Request()
			response := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			httpLogger.Debugw("finished server http call",
				"http.code", response.Status,
				"http.method", request.Method,
				"http.uri", request.URL.Path,
				"http.start_time", start.Format(time.RFC3339),
				"http.duration", time.Since(start))

			return
		}
	}
}

func EchoRecover(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apply := func() (topErr error) {
				defer func() {
					if r := recover(); r != nil {
						err, ok := r.(error)
						if !ok {
							err = fmt.Errorf("%v", r)
						}
						logger.Error("panic when processing request", zap.Error(err))
						topErr = err
					}
				}()
				return next(c)
			}
			return apply()
		}
	}
}

func EchoMetrics(p *prometheus.Prometheus) echo.MiddlewareFunc {
	return p.HandlerFunc
}
