package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
)

func newTestScheduler() *Scheduler {
	return New(logger.New(&config.Config{LogLevel: "error"}), time.UTC)
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := newTestScheduler()
	err := s.Register(Job{Name: "bad", Spec: "every now and then", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestScheduler()
	job := Job{Name: "flush", Spec: "@every 1m", Run: func(context.Context) error { return nil }}
	if err := s.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Register(job); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestRegister_Disabled(t *testing.T) {
	s := newTestScheduler()
	job := Job{Name: "expire", Spec: "@every 5m", Run: func(context.Context) error { return nil }}
	if err := s.Register(job.Disabled()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := s.Next("expire"); ok {
		t.Fatal("disabled job must not be scheduled")
	}
}

func TestNext_DailySpec(t *testing.T) {
	s := newTestScheduler()
	if err := s.Register(Job{Name: "ratings", Spec: "0 3 * * *", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	next, ok := s.Next("ratings")
	if !ok {
		t.Fatal("expected ratings to be registered")
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Fatalf("expected 03:00, got %s", next)
	}
}

func TestRunNow_PassesContextAndTimeout(t *testing.T) {
	s := newTestScheduler()
	var sawDeadline atomic.Bool
	err := s.Register(Job{
		Name:    "views",
		Spec:    "@every 1h",
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			sawDeadline.Store(ok)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.RunNow("views"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if !sawDeadline.Load() {
		t.Fatal("job context should carry the timeout")
	}
	if err := s.RunNow("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestRunNow_RecoversPanicsAndErrors(t *testing.T) {
	s := newTestScheduler()
	_ = s.Register(Job{Name: "panics", Spec: "@every 1h", Run: func(context.Context) error { panic("boom") }})
	_ = s.Register(Job{Name: "fails", Spec: "@every 1h", Run: func(context.Context) error { return errors.New("db down") }})

	if err := s.RunNow("panics"); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if err := s.RunNow("fails"); err != nil {
		t.Fatalf("run now: %v", err)
	}
}

func TestStop_CancelsJobContext(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	var cancelled atomic.Bool
	_ = s.Register(Job{Name: "long", Spec: "@every 1h", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}})

	go func() { _ = s.RunNow("long") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)

	deadline := time.After(2 * time.Second)
	for !cancelled.Load() {
		select {
		case <-deadline:
			t.Fatal("job context was not cancelled by Stop")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
