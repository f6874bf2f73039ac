package app

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/messaging/kafka"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer(nil, logger)

	if err != nil {
		t.Errorf("expected no error for empty brokers, got %v", err)
	}

	if producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	// Используем несуществующий broker
	producer, err := initKafkaProducer([]string{"invalid-broker:9999"}, logger)

	if err == nil {
		t.Error("expected error for invalid brokers")
	}

	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestCloseKafka_NilProducer(t *testing.T) {
	logger := log.WithField("test", "kafka")

	// Не должно паниковать
	closeKafka(nil, logger)
}

func TestEventPublisher_WithoutProducerLogs(t *testing.T) {
	publisher := eventPublisher(nil, "", log.WithField("test", "events"))

	if _, ok := publisher.(*logPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", publisher)
	}
	msg, err := domain.NewOrderEvent(domain.EventOrderDeleted, 7, nil, testTime).OutboxMessage("evt-1")
	if err != nil {
		t.Fatalf("build outbox message: %v", err)
	}
	if err := publisher.Publish(msg); err != nil {
		t.Errorf("log publisher should not fail, got %v", err)
	}
}

func TestEventPublisher_WithProducer(t *testing.T) {
	producer := kafka.NewProducerFromSync(nil, nil)

	publisher := eventPublisher(producer, "custom.topic", log.WithField("test", "events"))

	if _, ok := publisher.(*kafka.OutboxTopicPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", publisher)
	}
}

func TestKafkaHealth(t *testing.T) {
	if err := kafkaHealth(nil)(t.Context()); err == nil {
		t.Error("expected error when producer is missing")
	}
	if err := kafkaHealth(kafka.NewProducerFromSync(nil, nil))(t.Context()); err != nil {
		t.Errorf("expected healthy kafka check, got %v", err)
	}
}
