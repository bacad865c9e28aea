package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerRunsImmediately(t *testing.T) {
	t.Parallel()

	s := NewDailyScheduler(time.Hour)
	fired := make(chan time.Time, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(ts time.Time) { fired <- ts }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire on start")
	}
}

func TestSchedulerTicks(t *testing.T) {
	t.Parallel()

	s := NewDailyScheduler(20 * time.Millisecond)
	fired := make(chan time.Time, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(ts time.Time) { fired <- ts }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop(context.Background())

	deadline := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-deadline:
			t.Fatalf("only %d runs before deadline", i)
		}
	}
}

func TestSchedulerStop(t *testing.T) {
	t.Parallel()

	s := NewDailyScheduler(10 * time.Millisecond)
	fired := make(chan time.Time, 64)

	if err := s.Start(context.Background(), func(ts time.Time) { fired <- ts }); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	<-fired
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	// Drain anything in flight, then verify the ticker is silent.
	time.Sleep(50 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}
	time.Sleep(50 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatal("job fired after Stop")
	}
}

func TestSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewDailyScheduler(0)
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start with nil job: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
