package httpapi_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordersync/internal/apiclient"
	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/service/httpapi"
	"github.com/vladislavdragonenkov/ordersync/internal/store"
)

// Клиентский store поверх настоящего API-сервера.
func TestStoreAgainstServer_AcmeScenario(t *testing.T) {
	srv := newTestServer(t, httpapi.RateLimitConfig{})
	server := httptest.NewServer(srv.router)
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL, apiclient.WithSession(apiclient.StaticSession(srv.token)), apiclient.WithTimeout(5*time.Second))
	orders := store.New(client)
	t.Cleanup(orders.Close)
	ctx := context.Background()

	orders.AddOrder(ctx, domain.CreateOrderRequest{Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20})
	state := orders.State()
	require.Empty(t, state.Error)
	require.Equal(t, []domain.Order{{ID: 1, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20, TotalHT: 3250, TotalTTC: 3900}}, state.Orders)

	orders.SelectOrder(ctx, 1)
	require.NotNil(t, orders.State().Selected)

	orders.DeleteOrder(ctx, 1)
	state = orders.State()
	assert.Empty(t, state.Orders)
	assert.Nil(t, state.Selected)
	assert.False(t, state.Loading)

	orders.LoadOrders(ctx)
	assert.Empty(t, orders.State().Orders)
}

func TestStoreAgainstServer_ErrorMessages(t *testing.T) {
	srv := newTestServer(t, httpapi.RateLimitConfig{})
	server := httptest.NewServer(srv.router)
	t.Cleanup(server.Close)
	ctx := context.Background()

	anonymous := store.New(apiclient.New(server.URL))
	t.Cleanup(anonymous.Close)
	anonymous.LoadOrders(ctx)
	assert.Equal(t, store.MsgNotAuth, anonymous.State().Error)

	authed := store.New(apiclient.New(server.URL, apiclient.WithSession(apiclient.StaticSession(srv.token))))
	t.Cleanup(authed.Close)

	authed.SelectOrder(ctx, 99)
	state := authed.State()
	assert.Equal(t, store.MsgNotFound, state.Error)
	assert.Nil(t, state.Selected)

	authed.AddOrder(ctx, domain.CreateOrderRequest{Customer: "", NbDays: 0})
	assert.Equal(t, store.MsgInvalidData, authed.State().Error)
	assert.Empty(t, authed.State().Orders)

	authed.LoadOrders(ctx)
	assert.Empty(t, authed.State().Error)
}

func TestStoreAgainstServer_Unreachable(t *testing.T) {
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()

	orders := store.New(apiclient.New(url))
	t.Cleanup(orders.Close)

	orders.LoadOrders(context.Background())
	state := orders.State()
	assert.Equal(t, store.MsgUnreachable, state.Error)
	assert.False(t, state.Loading)
}
