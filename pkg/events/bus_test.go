package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

type orderPlaced struct {
	Meta
	OrderID uuid.UUID `json:"order_id"`
}

func TestRetryWithBackoff_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return nil
	}
	err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), handler, maxRetries, time.Millisecond, nopLogger())
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		if calls < 3 {
			return errors.New("transient error")
		}
		return nil
	}
	err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), handler, maxRetries, time.Millisecond, nopLogger())
	if err != nil {
		t.Fatalf("expected nil after eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent error")
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return permanent
	}
	err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), handler, maxRetries, time.Millisecond, nopLogger())
	if !errors.Is(err, permanent) {
		t.Fatalf("expected wrapped permanent error, got %v", err)
	}
	if calls != maxRetries {
		t.Errorf("expected %d calls, got %d", maxRetries, calls)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	err := retryWithBackoff(ctx, message.NewMessage("id", nil), handler, maxRetries, time.Second, nopLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before context cancel, got %d", calls)
	}
}

func TestStartForwarder_RequiresOutbox(t *testing.T) {
	bus := &EventBus{}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error for a bus without outbox")
	}
}

func TestNewMessage_Metadata(t *testing.T) {
	evt := orderPlaced{Meta: NewMeta(time.Now()), OrderID: uuid.New()}

	msg, err := NewMessage(context.Background(), evt)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if got := msg.Metadata.Get("event_id"); got != evt.EventID.String() {
		t.Errorf("event_id metadata = %q", got)
	}
	if got := msg.Metadata.Get("event_version"); got != "1" {
		t.Errorf("event_version metadata = %q", got)
	}

	decoded, err := Decode[orderPlaced](msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.OrderID != evt.OrderID || decoded.EventID != evt.EventID {
		t.Fatalf("decoded %+v, want %+v", decoded, evt)
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	if _, err := Decode[orderPlaced](message.NewMessage("id", []byte("{"))); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSubscribe_DeliversAndPropagatesTrace(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := newBus(ch, ch, nopLogger())
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type delivery struct {
		evt     orderPlaced
		traceID trace.TraceID
	}
	got := make(chan delivery, 1)
	errCh, err := bus.Subscribe(ctx, "order.placed", func(ctx context.Context, msg *message.Message) error {
		evt, err := Decode[orderPlaced](msg)
		if err != nil {
			return err
		}
		got <- delivery{evt: evt, traceID: trace.SpanFromContext(ctx).SpanContext().TraceID()}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	go func() {
		for range errCh {
		}
	}()

	spanCtx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	evt := orderPlaced{Meta: NewMeta(time.Now()), OrderID: uuid.New()}
	msg, err := NewMessage(spanCtx, evt)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if err := bus.Publish(spanCtx, "order.placed", msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case d := <-got:
		if d.evt.OrderID != evt.OrderID {
			t.Errorf("order id = %s, want %s", d.evt.OrderID, evt.OrderID)
		}
		if d.traceID != span.SpanContext().TraceID() {
			t.Errorf("trace id = %s, want %s", d.traceID, span.SpanContext().TraceID())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message was not delivered")
	}
}
