package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// TxPublisher publishes an event as part of a database transaction.
// Repositories depend on this instead of *EventBus.
type TxPublisher interface {
	PublishTx(ctx context.Context, tx *sql.Tx, topic string, event any) error
}

// Meta is embedded in every storefront event payload.
type Meta struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta stamps a version 1 event occurring at now.
func NewMeta(now time.Time) Meta {
	return Meta{EventID: uuid.New(), Version: 1, OccurredAt: now.UTC()}
}

// versioned lets NewMessage copy the envelope into message metadata.
type versioned interface {
	meta() Meta
}

func (m Meta) meta() Meta { return m }

// NewMessage encodes event as JSON and carries the trace context of ctx.
// Events embedding Meta also expose event_id and event_version as metadata so
// consumers can deduplicate without decoding the payload.
func NewMessage(ctx context.Context, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %T: %w", event, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if v, ok := event.(versioned); ok {
		m := v.meta()
		msg.Metadata.Set("event_id", m.EventID.String())
		msg.Metadata.Set("event_version", strconv.Itoa(m.Version))
	}
	injectTrace(ctx, msg)
	return msg, nil
}

// Decode unmarshals the payload of msg into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %T: %w", v, err)
	}
	return v, nil
}
