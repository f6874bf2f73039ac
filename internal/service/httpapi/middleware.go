package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
	"github.com/vladislavdragonenkov/ordersync/internal/service/auth"
)

// RequestIDHeader несёт идентификатор запроса.
const RequestIDHeader = "X-Request-ID"

const (
	loggerKey  = "ordersync.logger"
	sessionKey = "ordersync.session"
)

// RateLimitConfig задаёт ограничение запросов на один IP.
type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

func requestIDMiddleware(base *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(loggerKey, base.WithField("request_id", requestID))
		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := requestLogger(c).WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("http request")
		case status >= http.StatusBadRequest:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLogger(c).WithField("panic", recovered).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	})
}

func metricsMiddleware(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// ipRateLimiter хранит отдельный token bucket для каждого клиента.
type ipRateLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.limit, l.burst))
	return limiter.(*rate.Limiter)
}

func rateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Rate <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := &ipRateLimiter{limit: rate.Limit(cfg.Rate), burst: burst}

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			requestLogger(c).WithField("client_ip", c.ClientIP()).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}

// bearerAuthMiddleware пропускает только запросы с действующим токеном.
func bearerAuthMiddleware(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(c, domain.ErrUnauthenticated)
			return
		}

		session, err := sessions.Authenticate(strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Set(loggerKey, requestLogger(c).WithField("username", session.Username))
		c.Next()
	}
}
