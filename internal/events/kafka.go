package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	publishTimeout  = 2 * time.Second
	eventTypeHeader = "event_type"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer     MessageWriter
	propagator propagation.TextMapPropagator
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(w, otel.GetTextMapPropagator())
}

func NewKafkaPublisherWithWriter(w MessageWriter, p propagation.TextMapPropagator) *KafkaPublisher {
	return &KafkaPublisher{writer: w, propagator: p}
}

// Publish writes evt keyed by its aggregate id so events of one sale or
// product stay ordered within a partition. The current trace context travels
// in the message headers.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", evt.Type, err)
	}

	carrier := propagation.MapCarrier{}
	p.propagator.Inject(ctx, carrier)

	headers := make([]kafka.Header, 0, len(carrier)+1)
	headers = append(headers, kafka.Header{Key: eventTypeHeader, Value: []byte(evt.Type)})
	for _, k := range carrier.Keys() {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(carrier.Get(k))})
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(evt.Key),
		Value:   payload,
		Headers: headers,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
