package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
}

func TestRetry_FirstAttempt(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastPolicy(3), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetry_RecoversFromTemporary(t *testing.T) {
	var calls int
	var retries []int
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, _ error) { retries = append(retries, attempt) }
	err := Retry(context.Background(), p, func(_ context.Context) error {
		calls++
		if calls < 3 {
			return Temporary(errors.New("scan file locked"), 0)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("retries = %v, want [1 2]", retries)
	}
}

func TestRetry_GivesUp(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastPolicy(4), func(_ context.Context) error {
		calls++
		return Temporary(errors.New("unavailable"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	var calls int
	err := Retry(context.Background(), fastPolicy(5), func(_ context.Context) error {
		calls++
		return errors.New("malformed batch")
	})
	if err == nil || calls != 1 {
		t.Errorf("err = %v, calls = %d; want error after 1 call", err, calls)
	}
}

func TestRetry_CustomRetryable(t *testing.T) {
	sentinel := errors.New("busy")
	p := fastPolicy(3)
	p.Retryable = func(err error) bool { return errors.Is(err, sentinel) }
	var calls int
	_ = Retry(context.Background(), p, func(_ context.Context) error {
		calls++
		return sentinel
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy(10)
	p.InitialBackoff = time.Hour
	p.MaxBackoff = time.Hour
	var calls int
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, p, func(_ context.Context) error {
			calls++
			return Temporary(errors.New("down"), 0)
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected error")
		}
	case <-time.After(time.Second):
		t.Fatal("Retry did not stop on cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryValue(t *testing.T) {
	var calls int
	v, err := RetryValue(context.Background(), fastPolicy(3), func(_ context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", Temporary(errors.New("again"), 0)
		}
		return "batch", nil
	})
	if err != nil || v != "batch" {
		t.Errorf("RetryValue = %q, %v", v, err)
	}
}

func TestBackoff_Capped(t *testing.T) {
	p := RetryPolicy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, Multiplier: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := p.Backoff(i); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	p := RetryPolicy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, Multiplier: 2, Jitter: 0.5}
	for i := 0; i < 100; i++ {
		d := p.Backoff(0)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("Backoff(0) = %v outside jitter bounds", d)
		}
	}
}

func TestPolicyFromSettings(t *testing.T) {
	p := PolicyFromSettings(0, 0, 0)
	d := DefaultRetryPolicy()
	if p.MaxAttempts != d.MaxAttempts || p.InitialBackoff != d.InitialBackoff || p.MaxBackoff != d.MaxBackoff {
		t.Errorf("defaults not kept: %+v", p)
	}
	p = PolicyFromSettings(5, 100, 2000)
	if p.MaxAttempts != 5 || p.InitialBackoff != 100*time.Millisecond || p.MaxBackoff != 2*time.Second {
		t.Errorf("overrides not applied: %+v", p)
	}
}
