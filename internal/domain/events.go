package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OrderEvent описывает изменение заказа.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	Order      *Order    `json:"order,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderEvent собирает событие. Для удаления передаётся только ID.
func NewOrderEvent(eventType string, orderID int64, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		Order:      order,
		OccurredAt: at.UTC(),
	}
}

// OutboxMessage превращает событие в запись outbox с заданным ID.
func (e OrderEvent) OutboxMessage(id string) (OutboxMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("encode %s event: %w", e.EventType, err)
	}
	return OutboxMessage{
		ID:            id,
		AggregateType: AggregateTypeOrder,
		AggregateID:   strconv.FormatInt(e.OrderID, 10),
		EventType:     e.EventType,
		Payload:       payload,
	}, nil
}
