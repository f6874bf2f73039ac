package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithSession(StaticSession("secret")))
}

func TestClient_ListOrders(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]domain.Order{{ID: 1, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}})
	})

	orders, err := client.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Acme", orders[0].Customer)
}

func TestClient_NoTokenOmitsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	orders, err := New(srv.URL).ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestClient_CreateOrderSendsTotals(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in domain.Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, 3250.0, in.TotalHT)
		assert.Equal(t, 3900.0, in.TotalTTC)

		in.ID = 1
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})

	req := domain.CreateOrderRequest{Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}
	created, err := client.CreateOrder(context.Background(), req.Order())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestClient_UpdateAndDeleteUseOrderPath(t *testing.T) {
	var seen []string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		var in domain.Order
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(in)
	})

	updated, err := client.UpdateOrder(context.Background(), domain.Order{ID: 7, Customer: "Beta", NbDays: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.ID)

	require.NoError(t, client.DeleteOrder(context.Background(), 7))
	assert.Equal(t, []string{"PUT /api/orders/7", "DELETE /api/orders/7"}, seen)
}

func TestClient_APIErrorCarriesStatusAndMessage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"customer already billed"}`))
	})

	_, err := client.GetOrder(context.Background(), 3)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "customer already billed", apiErr.Message)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.DeleteOrder(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "api: status 500", apiErr.Error())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListOrders(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Zero(t, StatusCode(err))
}

func TestClient_TimeoutIsReported(t *testing.T) {
	release := make(chan struct{})
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListOrders(ctx)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout())
}

func TestClient_Login(t *testing.T) {
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var in loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "admin", in.Username)
		_ = json.NewEncoder(w).Encode(LoginResult{Token: "tok", ExpiresAt: expires})
	})

	res, err := client.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.True(t, res.ExpiresAt.Equal(expires))
}

func TestStaticSession(t *testing.T) {
	token, ok := StaticSession("abc").Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = NoSession.Token()
	assert.False(t, ok)
}
