package app

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/messaging/kafka"
)

var errKafkaDisabled = errors.New("kafka producer is not configured")

// initKafkaProducer создаёт producer, если заданы брокеры.
// Пустой список даёт nil, nil: события тогда только логируются.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// eventPublisher выбирает публикатор outbox: Kafka или журнал.
func eventPublisher(producer *kafka.Producer, topic string, logger *log.Entry) domain.OutboxPublisher {
	if producer == nil {
		return &logPublisher{logger: logger}
	}
	return kafka.NewOutboxPublisher(producer, topic)
}

// kafkaHealth некритична: без Kafka сервис работает, а события копятся в outbox.
func kafkaHealth(producer *kafka.Producer) func(context.Context) error {
	return func(context.Context) error {
		if producer == nil {
			return errKafkaDisabled
		}
		return nil
	}
}

// logPublisher пишет события в журнал, когда Kafka не настроена.
type logPublisher struct {
	logger *log.Entry
}

func (p *logPublisher) Publish(msg domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"outbox_id":    msg.ID,
		"event_type":   msg.EventType,
		"aggregate_id": msg.AggregateID,
	}).Debug("order event")
	return nil
}
