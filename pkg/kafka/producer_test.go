package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	OrderID string `json:"order_id"`
	Total   int64  `json:"total"`
}

func TestNewEvent(t *testing.T) {
	payload := orderPayload{OrderID: "ord-1", Total: 215000}
	ev, err := NewEvent("summerbooks.order.created", "ord-1", "order", "summerbooks-backend", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "summerbooks.order.created", ev.EventType)
	assert.Equal(t, "ord-1", ev.AggregateID)
	assert.Equal(t, "order", ev.AggregateType)
	assert.Equal(t, "summerbooks-backend", ev.Source)
	assert.Equal(t, 1, ev.Version)
	assert.WithinDuration(t, time.Now().UTC(), ev.Timestamp, 2*time.Second)
	assert.Nil(t, ev.Metadata, "metadata map is allocated lazily")

	var got orderPayload
	require.NoError(t, json.Unmarshal(ev.Data, &got))
	assert.Equal(t, payload, got)
}

func TestNewEvent_UnserializableData(t *testing.T) {
	_, err := NewEvent("summerbooks.cart.cleared", "sess-1", "cart", "summerbooks-backend", make(chan int))
	require.Error(t, err)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("summerbooks.voucher.redeemed", "vch-9", "voucher", "summerbooks-backend",
		map[string]string{"code": "SUMMER10"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-42").WithMetadata("user_id", "u-7")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.Equal(t, original.Metadata, restored.Metadata)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
	assert.WithinDuration(t, original.Timestamp, restored.Timestamp, time.Millisecond)
}

func TestEvent_BuildersChain(t *testing.T) {
	ev, err := NewEvent("summerbooks.order.status_changed", "ord-3", "order", "summerbooks-backend", nil)
	require.NoError(t, err)

	got := ev.WithCorrelationID("corr-1").WithMetadata("actor", "admin")
	assert.Same(t, ev, got)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, "admin", ev.Metadata["actor"])
}

func TestEvent_WithMetadata_NilMap(t *testing.T) {
	ev := &Event{EventID: "ev-1"}
	ev.WithMetadata("source_ip", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", ev.Metadata["source_ip"])
}

func TestEvent_UnmarshalData(t *testing.T) {
	payload := orderPayload{OrderID: "ord-8", Total: 86000}
	ev, err := NewEvent("summerbooks.order.created", "ord-8", "order", "summerbooks-backend", payload)
	require.NoError(t, err)

	var got orderPayload
	require.NoError(t, ev.UnmarshalData(&got))
	assert.Equal(t, payload, got)

	ev.Data = json.RawMessage(`{"order_id":`)
	require.Error(t, ev.UnmarshalData(&got))
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	for _, raw := range [][]byte{[]byte(`{broken`), {}} {
		_, err := UnmarshalEvent(raw)
		require.Error(t, err)
	}
}

func TestTopic(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"order", "created", "summerbooks.order.created"},
		{"order", "status_changed", "summerbooks.order.status_changed"},
		{"voucher", "redeemed", "summerbooks.voucher.redeemed"},
		{"cart", "cleared", "summerbooks.cart.cleared"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"kafka-1:9092", "kafka-2:9092"})

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async, "request-path publishing must be synchronous")
}

func TestNewProducer_CloseWithoutBroker(t *testing.T) {
	// The writer connects lazily, so construction and Close work offline.
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoneConfigured(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
