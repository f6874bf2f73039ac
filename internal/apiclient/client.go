package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

const maxErrorBody = 64 << 10

// Client ходит в удалённый Order API по HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	logger     *log.Entry
}

// Option настраивает клиента.
type Option func(*Client)

// WithSession задаёт источник bearer-токена.
func WithSession(session Session) Option {
	return func(c *Client) {
		if session != nil {
			c.session = session
		}
	}
}

// WithTimeout ограничивает время одного запроса. 0 снимает ограничение.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient подменяет транспорт (используется в тестах).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New создаёт клиента для API по адресу baseURL (например, http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		session:    NoSession,
		logger:     log.WithField("component", "api-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoginResult описывает успешную аутентификацию.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login обменивает логин и пароль на токен сессии.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password}, &result)
	return result, err
}

// ListOrders возвращает все заказы.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, "list orders", http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder возвращает заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, "get order", http.MethodGet, orderPath(id), nil, &order)
	return order, err
}

// CreateOrder отправляет новый заказ вместе с посчитанными суммами.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	var created domain.Order
	err := c.do(ctx, "create order", http.MethodPost, "/api/orders", order, &created)
	return created, err
}

// UpdateOrder заменяет заказ с order.ID.
func (c *Client) UpdateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	var updated domain.Order
	err := c.do(ctx, "update order", http.MethodPut, orderPath(order.ID), order, &updated)
	return updated, err
}

// DeleteOrder удаляет заказ.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, "delete order", http.MethodDelete, orderPath(id), nil, nil)
}

func orderPath(id int64) string {
	return "/api/orders/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &TransportError{Op: method + " " + path, Err: err})
	}
	defer resp.Body.Close()

	c.logger.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("api call finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", op, decodeAPIError(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
