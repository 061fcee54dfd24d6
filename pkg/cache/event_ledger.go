package cache

import (
	"context"
	"fmt"
	"time"
)

const handledEventPrefix = "event:handled:"

// EventLedger remembers which events a consumer has already applied, so
// handlers with side effects (restocking, for one) survive redelivery.
type EventLedger struct {
	client *RedisClient
	ttl    time.Duration
}

// NewEventLedger keeps claims for ttl, which must outlast the bus's retry
// horizon.
func NewEventLedger(r *RedisClient, ttl time.Duration) *EventLedger {
	return &EventLedger{client: r, ttl: ttl}
}

// Claim records eventID for consumer. It returns false when the event was
// claimed before.
func (l *EventLedger) Claim(ctx context.Context, consumer, eventID string) (bool, error) {
	ok, err := l.client.Client().SetNX(ctx, ledgerKey(consumer, eventID), time.Now().UTC().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return ok, nil
}

// Release drops a claim so a failed handler can run again on retry.
func (l *EventLedger) Release(ctx context.Context, consumer, eventID string) error {
	if err := l.client.Client().Del(ctx, ledgerKey(consumer, eventID)).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}

func ledgerKey(consumer, eventID string) string {
	return handledEventPrefix + consumer + ":" + eventID
}
