package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/pkg/config"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish_MovimientoConCabecera(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &Publisher{writer: w, now: func() time.Time { return at }}

	evt := inventory.StockMovementRecorded{
		EventType:  inventory.EventStockMovementRecorded,
		MovementID: "m-1",
		ProductID:  "p-1",
		Type:       "out",
		Quantity:   3,
		NewStock:   7,
	}
	require.NoError(t, p.Publish(context.Background(), "p-1", evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "p-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, inventory.EventStockMovementRecorded, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "m-1", decoded["movement_id"])
	assert.EqualValues(t, 7, decoded["new_stock"])
}

func TestPublish_SinNombreNoAgregaCabecera(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, now: time.Now}

	require.NoError(t, p.Publish(context.Background(), "k", map[string]int{"a": 1}))
	require.Len(t, w.msgs, 1)
	assert.Empty(t, w.msgs[0].Headers)
}

func TestPublish_Errores(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := &Publisher{writer: w, now: time.Now}

	err := p.Publish(context.Background(), "k", struct{}{})
	assert.ErrorContains(t, err, "broker caído")

	err = p.Publish(context.Background(), "k", make(chan int))
	assert.ErrorContains(t, err, "serializar")
}

func TestNewPublisher_Close(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "stock-events"})
	kw, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "stock-events", kw.Topic)
	assert.NoError(t, p.Close())
}
