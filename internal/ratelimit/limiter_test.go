package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAllow_Burst(t *testing.T) {
	l := NewLimiter(60, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("flat_and_stable") {
			t.Fatalf("call %d should be allowed within burst", i+1)
		}
	}
	if l.Allow("flat_and_stable") {
		t.Error("call after burst should be rejected")
	}
	if !l.Allow("high_and_stable") {
		t.Error("other keys must have their own bucket")
	}
}

func TestAllow_Refill(t *testing.T) {
	now := time.Now()
	l := NewLimiter(600, 2) // 10 per second
	l.now = func() time.Time { return now }

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected rejection after burst")
	}

	now = now.Add(150 * time.Millisecond) // 1.5 tokens
	if !l.Allow("k") {
		t.Error("expected a token after refill")
	}
	if l.Allow("k") {
		t.Error("half a token must not be spendable")
	}

	now = now.Add(time.Hour)
	for i := 0; i < 2; i++ {
		if !l.Allow("k") {
			t.Errorf("call %d: refill should cap at burst", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("refill exceeded burst")
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := NewLimiter(0, 50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("k") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestToolLimiters_Check(t *testing.T) {
	limits := ToolLimiters{"glucosim_latest": NewLimiter(0, 1)}

	if err := limits.Check("glucosim_latest", "live_capture"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	err := limits.Check("glucosim_latest", "live_capture")
	if !errors.Is(err, ErrLimited) {
		t.Errorf("second call error = %v, want ErrLimited", err)
	}
	if err := limits.Check("glucosim_unknown", "live_capture"); err != nil {
		t.Errorf("unlimited tool error = %v", err)
	}
}

func TestDefaultToolLimiters(t *testing.T) {
	limits := DefaultToolLimiters()
	for _, tool := range []string{"glucosim_scenarios", "glucosim_latest", "glucosim_momentum", "glucosim_counteraction"} {
		if limits[tool] == nil {
			t.Errorf("no limiter for %s", tool)
		}
	}
}
