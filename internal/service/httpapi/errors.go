package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/service/orders"
)

// errorResponse отдаётся в теле ответа при ошибке.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError сопоставляет доменные ошибки HTTP-статусам.
func writeError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "internal server error"

	switch {
	case orders.IsValidation(err):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		status, message = http.StatusNotFound, domain.ErrOrderNotFound.Error()
	case errors.Is(err, domain.ErrOrderConflict):
		status, message = http.StatusConflict, domain.ErrOrderConflict.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	}

	entry := requestLogger(c).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

// writeBadRequest отвечает 400 на некорректный JSON или путь.
func writeBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: message})
}

func requestLogger(c *gin.Context) *log.Entry {
	if entry, ok := c.Get(loggerKey); ok {
		if logger, ok := entry.(*log.Entry); ok {
			return logger
		}
	}
	return log.WithField("component", "http-api")
}
