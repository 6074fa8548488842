package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/event"
	"github.com/tuanvumaihuynh/product-management/internal/storage/mq"
)

type stubConsumer struct {
	handlers map[string]mq.HandlerFunc
	running  bool
	stopped  bool
}

func (c *stubConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *stubConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.running = true
	return func() { c.stopped = true }, nil
}

func (c *stubConsumer) deliver(t *testing.T, topic string, ev any) error {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	h, ok := c.handlers[topic]
	require.True(t, ok, "no handler for %s", topic)
	return h(context.Background(), mq.Message{Topic: topic, Payload: payload})
}

func newEventService(t *testing.T) (*stubConsumer, *bytes.Buffer, event.CleanupFunc) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := &stubConsumer{}

	svc := event.New(config.Events{Enabled: true, LowStockThreshold: 5}, logger, consumer)
	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)

	return consumer, &buf, cleanup
}

func TestService_RegistersAllTopics(t *testing.T) {
	consumer, _, cleanup := newEventService(t)

	assert.True(t, consumer.running)
	for _, topic := range event.Topics {
		assert.Contains(t, consumer.handlers, topic)
	}

	cleanup()
	assert.True(t, consumer.stopped)
}

func TestService_LowStockWarning(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		wantWarn bool
	}{
		{name: "above threshold", stock: 6, wantWarn: false},
		{name: "at threshold", stock: 5, wantWarn: true},
		{name: "empty", stock: 0, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, buf, _ := newEventService(t)

			err := consumer.deliver(t, event.TopicProductStockAdjusted, event.StockAdjustedEvent{
				ProductID:     "p-1",
				Sku:           "WM-004",
				Delta:         -1,
				StockQuantity: tt.stock,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantWarn, strings.Contains(buf.String(), "product stock low"))
		})
	}
}

func TestService_RejectsMalformedPayload(t *testing.T) {
	consumer, _, _ := newEventService(t)

	err := consumer.handlers[event.TopicProductCreated](context.Background(), mq.Message{
		Topic:   event.TopicProductCreated,
		Payload: []byte("{"),
	})
	assert.ErrorContains(t, err, "unmarshal product.created event")
}

func TestService_HandlesDeleted(t *testing.T) {
	consumer, buf, _ := newEventService(t)

	require.NoError(t, consumer.deliver(t, event.TopicProductDeleted, event.ProductDeletedEvent{ProductID: "p-9"}))
	assert.Contains(t, buf.String(), `"product_id":"p-9"`)
}
