package domain

import "context"

// OrderRepository описывает требования к серверному хранилищу заказов.
type OrderRepository interface {
	// List возвращает все заказы в порядке возрастания ID.
	List(ctx context.Context) ([]Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id int64) (Order, error)
	// Create присваивает заказу ID и сохраняет его.
	Create(ctx context.Context, order Order) (Order, error)
	// Update перезаписывает заказ (last-write-wins) или возвращает ErrOrderNotFound.
	Update(ctx context.Context, order Order) (Order, error)
	// Delete удаляет заказ или возвращает ErrOrderNotFound.
	Delete(ctx context.Context, id int64) error
}
