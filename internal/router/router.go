// Package router registers the HTTP routes of the assistant API.
package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/handler"
	"github.com/iliyamo/food-ordering-assistant/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health *handler.HealthHandler
	Chat   *handler.ChatHandler
	Orders *handler.OrderHandler
	Cache  *handler.CacheHandler
}

// New builds an Echo instance with logging, recovery and every route.
func New(cfg config.Config, h Handlers, rdb *redis.Client, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	RegisterRoutes(e, h.Health)
	RegisterChat(e, h.Chat, h.Orders, cfg.JWTSecret, middleware.NewTokenBucket(cfg.RateLimit, rdb))
	RegisterAdmin(e, h.Cache, cfg.JWTSecret)
	return e
}

// RegisterRoutes registers routes that never require authentication.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterChat registers the conversational endpoints.  limit wraps chat
// turns only.
func RegisterChat(e *echo.Echo, chat *handler.ChatHandler, orders *handler.OrderHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.POST("/chat", chat.Chat, limit)
	g.DELETE("/chat/history", chat.ClearHistory)
	g.POST("/orders/:id/cancel", orders.Cancel)
}

// RegisterAdmin registers the cache maintenance endpoints.  When JWT is
// enabled they require the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.CacheHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	if jwtSecret != "" {
		g.Use(middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))
	}
	g.GET("/cache", h.Stats)
	g.DELETE("/cache/:kind", h.Invalidate)
}

// errorHandler renders errors as {"error": "..."}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	} else {
		c.Logger().Error(err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}
