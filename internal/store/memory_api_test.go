package store

import (
	"context"
	"math/rand"
	"net/http"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/ordersync/internal/apiclient"
	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

// memoryAPI отвечает синхронно из map. С rnd часть вызовов завершается ошибкой.
type memoryAPI struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order
	rnd    *rand.Rand
}

func newMemoryAPI(rnd *rand.Rand) *memoryAPI {
	return &memoryAPI{orders: make(map[int64]domain.Order), rnd: rnd}
}

func (m *memoryAPI) fail() error {
	if m.rnd == nil || m.rnd.Intn(4) != 0 {
		return nil
	}
	return &apiclient.APIError{StatusCode: http.StatusServiceUnavailable}
}

func (m *memoryAPI) ListOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryAPI) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return domain.Order{}, &apiclient.APIError{StatusCode: http.StatusNotFound}
	}
	return order, nil
}

func (m *memoryAPI) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return domain.Order{}, err
	}
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryAPI) UpdateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return domain.Order{}, err
	}
	if _, ok := m.orders[order.ID]; !ok {
		return domain.Order{}, &apiclient.APIError{StatusCode: http.StatusNotFound}
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryAPI) DeleteOrder(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.orders[id]; !ok {
		return &apiclient.APIError{StatusCode: http.StatusNotFound}
	}
	delete(m.orders, id)
	return nil
}
