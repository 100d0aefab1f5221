package coros

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsEventually(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}
	calls := 0
	got, err := retry(context.Background(), p,
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		},
		func(v int) bool { return v != 0 },
	)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsAfterSuccess(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}
	calls := 0
	_, err := retry(context.Background(), p,
		func(ctx context.Context) (int, error) {
			calls++
			return 1, nil
		},
		func(v int) bool { return true },
	)
	if err != nil || calls != 1 {
		t.Errorf("err = %v, calls = %d; want nil, 1", err, calls)
	}
}

func TestRetryExhaustsOnInvalidResults(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}
	calls := 0
	got, err := retry(context.Background(), p,
		func(ctx context.Context) (int, error) {
			calls++
			return 7, nil // well-formed but never valid
		},
		func(v int) bool { return false },
	)
	if !errors.Is(err, errRetriesExhausted) {
		t.Fatalf("err = %v, want errRetriesExhausted", err)
	}
	if got != 0 {
		t.Errorf("got %d, want zero value on exhaustion", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Hour}
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := retry(ctx, p,
			func(ctx context.Context) (int, error) {
				calls++
				return 0, errors.New("always fails")
			},
			func(v int) bool { return true },
		)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not return after context cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPacerSpacesRequests(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three requests completed in %v, want at least 40ms", elapsed)
	}
}

func TestPacerNilAndZero(t *testing.T) {
	var nilPacer *Pacer
	if err := nilPacer.Wait(context.Background()); err != nil {
		t.Errorf("nil pacer Wait: %v", err)
	}
	if err := NewPacer(0).Wait(context.Background()); err != nil {
		t.Errorf("zero-interval pacer Wait: %v", err)
	}
}

func TestPacerCancel(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected context error from second Wait")
	}
}
