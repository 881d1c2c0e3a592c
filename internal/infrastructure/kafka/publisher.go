package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/pkg/config"
)

// messageWriter subconjunto de *kafka.Writer usado por el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publica eventos de stock en un tópico, con clave = id de producto
// para conservar el orden por producto dentro de la partición.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

var _ inventory.EventPublisher = (*Publisher)(nil)

// NewPublisher crea el writer hacia los brokers configurados.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &Publisher{writer: writer, now: time.Now}
}

// Publish serializa event en JSON y lo escribe. Si el evento expone EventName se envía
// también como cabecera event_type.
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  p.now(),
	}
	if named, ok := event.(interface{ EventName() string }); ok {
		msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(named.EventName())}}
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: escribir mensaje: %w", err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
