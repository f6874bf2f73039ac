package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
	"github.com/vladislavdragonenkov/ordersync/internal/service/auth"
	"github.com/vladislavdragonenkov/ordersync/internal/service/orders"
)

// Config задаёт параметры роутера.
type Config struct {
	RateLimit RateLimitConfig
	Metrics   *metrics.HTTPMetrics
	Logger    *log.Entry
}

// NewRouter собирает gin.Engine с REST API заказов:
//
//	POST   /api/auth/login
//	GET    /api/orders
//	POST   /api/orders
//	GET    /api/orders/:id
//	PUT    /api/orders/:id
//	DELETE /api/orders/:id
//
// Все маршруты /api/orders требуют bearer-токен.
func NewRouter(orderService *orders.Service, sessions *auth.Service, cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(requestIDMiddleware(logger))
	engine.Use(recoveryMiddleware())
	engine.Use(loggingMiddleware())
	engine.Use(metricsMiddleware(cfg.Metrics))
	engine.Use(rateLimitMiddleware(cfg.RateLimit))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	api := engine.Group("/api")
	authAPI := &authHandler{sessions: sessions}
	api.POST("/auth/login", authAPI.login)

	orderAPI := &orderHandler{orders: orderService}
	orderAPI.register(api.Group("/orders", bearerAuthMiddleware(sessions)))

	return engine
}
