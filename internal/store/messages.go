package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vladislavdragonenkov/ordersync/internal/apiclient"
)

// Сообщения, которые store записывает в State.Error.
const (
	MsgUnreachable = "Cannot reach the server. Check your connection."
	MsgTimeout     = "The server took too long to respond."
	MsgInvalidData = "Invalid data."
	MsgNotAuth     = "Not authenticated."
	MsgNotFound    = "Order not found."
	MsgConflict    = "This order conflicts with an existing one."
	MsgServerError = "Server error, please retry later."
	MsgUnexpected  = "Unexpected error."
)

// DescribeError переводит ошибку API-клиента в сообщение для пользователя.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}

	var transportErr *apiclient.TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Timeout() {
			return MsgTimeout
		}
		return MsgUnreachable
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return MsgUnexpected
	}

	switch code := apiErr.StatusCode; {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return MsgInvalidData
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return MsgNotAuth
	case code == http.StatusNotFound:
		return MsgNotFound
	case code == http.StatusConflict:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgConflict
	case code >= 500 && code <= 599:
		return MsgServerError
	default:
		return fmt.Sprintf("Unexpected error (status %d).", code)
	}
}
