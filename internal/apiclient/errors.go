package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError означает, что сервер ответил статусом вне 2xx.
type APIError struct {
	StatusCode int
	// Message берётся из поля "error" тела ответа, может быть пустым.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// TransportError означает, что ответ от сервера не получен.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout сообщает, что запрос не уложился в дедлайн.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusCode извлекает HTTP-статус из цепочки ошибок; 0, если его нет.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
