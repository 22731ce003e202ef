package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic this backend publishes to, so the
// storefront's streams never collide with other teams on a shared cluster.
const TopicPrefix = "summerbooks"

// Topic returns the fully-qualified topic name <prefix>.<domain>.<action>,
// e.g. Topic("order", "created") == "summerbooks.order.created".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}

// envelopeVersion is bumped when the envelope layout changes incompatibly.
// Downstream consumers (fulfilment, email, analytics) switch decoders on it.
const envelopeVersion = 1

// Event wraps every storefront message: the envelope identifies which
// aggregate changed and when, Data carries the domain payload opaquely.
// EventID is the consumer-side deduplication key; AggregateID doubles as the
// partition key so all events for one order or voucher stay ordered.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data in a fresh envelope: new event ID, UTC timestamp,
// current envelope version. It fails only if data cannot be serialized.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       envelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}, nil
}

// WithCorrelationID ties the event back to the HTTP request that caused it.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata attaches an extra key-value pair, allocating the map on first
// use so plain events marshal without an empty metadata object.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string, 1)
	}
	e.Metadata[key] = value
	return e
}

// Marshal encodes the full envelope as the wire value.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes a wire value produced by Marshal.
func UnmarshalEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UnmarshalData decodes the inner domain payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
