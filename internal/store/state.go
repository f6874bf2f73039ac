package store

import "github.com/vladislavdragonenkov/ordersync/internal/domain"

// State хранит снимок состояния store. Каждый снимок независим:
// изменение полученной копии не влияет на store и других подписчиков.
type State struct {
	Orders   []domain.Order
	Loading  bool
	Error    string
	Selected *domain.Order
}

func (s State) clone() State {
	out := State{
		Loading: s.Loading,
		Error:   s.Error,
	}
	if s.Orders != nil {
		out.Orders = append(make([]domain.Order, 0, len(s.Orders)), s.Orders...)
	}
	if s.Selected != nil {
		selected := *s.Selected
		out.Selected = &selected
	}
	return out
}

// Find ищет заказ по ID в снимке.
func (s State) Find(id int64) (domain.Order, bool) {
	for _, order := range s.Orders {
		if order.ID == id {
			return order, true
		}
	}
	return domain.Order{}, false
}

// dedupe пересчитывает суммы и убирает дубликаты ID: позиция первого
// вхождения, значение последнего.
func dedupe(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	index := make(map[int64]int, len(orders))
	for _, order := range orders {
		order = order.WithTotals()
		if i, ok := index[order.ID]; ok {
			out[i] = order
			continue
		}
		index[order.ID] = len(out)
		out = append(out, order)
	}
	return out
}

func upsert(orders []domain.Order, order domain.Order) []domain.Order {
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			return orders
		}
	}
	return append(orders, order)
}

func remove(orders []domain.Order, id int64) []domain.Order {
	out := orders[:0]
	for _, order := range orders {
		if order.ID != id {
			out = append(out, order)
		}
	}
	return out
}
