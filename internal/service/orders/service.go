package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

// ValidationError содержит все нарушения полей запроса.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	return "invalid order: " + domain.JoinErrors(e.Errs)
}

// Unwrap позволяет сопоставлять отдельные нарушения через errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// Service реализует серверную логику заказов: валидация, пересчёт сумм,
// сохранение и постановка события в outbox.
type Service struct {
	repo   domain.OrderRepository
	outbox domain.OutboxRepository
	logger *log.Entry
	now    func() time.Time
}

// NewService создаёт сервис. outbox может быть nil: тогда события не пишутся.
func NewService(repo domain.OrderRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		repo:   repo,
		outbox: outbox,
		logger: logger,
		now:    time.Now,
	}
}

// List возвращает все заказы.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		orders[i] = orders[i].WithTotals()
	}
	return orders, nil
}

// Get возвращает заказ или domain.ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return order.WithTotals(), nil
}

// Create сохраняет новый заказ. Суммы из запроса игнорируются и пересчитываются.
func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return domain.Order{}, &ValidationError{Errs: errs}
	}

	created, err := s.repo.Create(ctx, req.Order())
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.enqueue(domain.EventOrderCreated, created.ID, &created)
	return created, nil
}

// Update заменяет поля существующего заказа.
func (s *Service) Update(ctx context.Context, req domain.UpdateOrderRequest) (domain.Order, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return domain.Order{}, &ValidationError{Errs: errs}
	}

	updated, err := s.repo.Update(ctx, req.Order())
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order %d: %w", req.ID, err)
	}
	s.enqueue(domain.EventOrderUpdated, updated.ID, &updated)
	return updated, nil
}

// Delete удаляет заказ.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.enqueue(domain.EventOrderDeleted, id, nil)
	return nil
}

// enqueue ставит событие в outbox. Ошибка не откатывает изменение заказа.
func (s *Service) enqueue(eventType string, orderID int64, order *domain.Order) {
	if s.outbox == nil {
		return
	}

	fields := log.Fields{"event_type": eventType, "order_id": orderID}
	msg, err := domain.NewOrderEvent(eventType, orderID, order, s.now()).OutboxMessage("")
	if err == nil {
		_, err = s.outbox.Enqueue(msg)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("failed to enqueue order event")
		return
	}
	s.logger.WithFields(fields).Debug("order event enqueued")
}

// IsValidation сообщает, что ошибка вызвана невалидным запросом.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
