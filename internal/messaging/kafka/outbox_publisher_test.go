package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	order := domain.Order{ID: 5, Customer: "Acme", NbDays: 5, TJM: 650, TauxTVA: 20}.WithTotals()
	msg, err := domain.NewOrderEvent(domain.EventOrderCreated, order.ID, &order, time.Now()).OutboxMessage("outbox-1")
	if err != nil {
		t.Fatalf("build outbox message: %v", err)
	}

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.ID != "outbox-1" || env.AggregateID != "5" || env.EventType != domain.EventOrderCreated {
			t.Errorf("unexpected envelope: %+v", env)
		}
		event, err := ParseOrderEvent(&sarama.ConsumerMessage{Value: val})
		if err != nil {
			return err
		}
		if event.Order == nil || event.Order.Customer != "Acme" {
			t.Errorf("unexpected event payload: %+v", event)
		}
		return nil
	})

	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, log.WithField("component", "kafka-outbox-publisher-test")), "")
	if publisher.topic != TopicOrderEvents {
		t.Fatalf("expected default topic, got %s", publisher.topic)
	}

	if err := publisher.Publish(msg); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, nil), "custom.topic")

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "7",
		EventType:     domain.EventOrderDeleted,
		Payload:       []byte(`{"event_type":"order.deleted","order_id":7}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-3", Payload: []byte(`{}`)}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
