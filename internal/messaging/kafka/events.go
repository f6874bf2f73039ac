package kafka

// TopicOrderEvents используется, если топик не задан в конфигурации.
const TopicOrderEvents = "ordersync.order.events"

// Заголовки Kafka-сообщений с событиями outbox.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)
