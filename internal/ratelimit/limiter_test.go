package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock returns a limiter whose clock is advanced by the returned func.
func fakeClock(l *Limiter) func(time.Duration) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.nowFunc = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		burst   int
		take    int
		advance time.Duration
		want    []bool
	}{
		{"within burst", 1, 3, 0, 0, []bool{true, true, true}},
		{"exceeds burst", 1, 2, 2, 0, []bool{false}},
		{"refills after wait", 10, 2, 2, 200 * time.Millisecond, []bool{true, true, false}},
		{"partial refill", 2, 5, 5, 250 * time.Millisecond, []bool{false}},
		{"refill capped at burst", 100, 3, 3, 10 * time.Second, []bool{true, true, true, false}},
		{"zero rate never refills", 0, 2, 2, time.Hour, []bool{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(tt.rate, tt.burst)
			advance := fakeClock(l)
			for i := 0; i < tt.take; i++ {
				if !l.Allow("k") {
					t.Fatalf("setup request %d rejected", i+1)
				}
			}
			advance(tt.advance)
			for i, want := range tt.want {
				if got := l.Allow("k"); got != want {
					t.Errorf("request %d: Allow = %v, want %v", i+1, got, want)
				}
			}
		})
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := NewLimiter(1.0, 1)
	fakeClock(l)

	l.Allow("a")
	if l.Allow("a") {
		t.Error("a should be exhausted")
	}
	if !l.Allow("b") {
		t.Error("b should have its own bucket")
	}
}

func TestTokens(t *testing.T) {
	l := NewLimiter(4.0, 8)
	advance := fakeClock(l)

	if got := l.Tokens("k"); got != 8 {
		t.Errorf("initial Tokens = %d, want 8", got)
	}
	for i := 0; i < 6; i++ {
		l.Allow("k")
	}
	if got := l.Tokens("k"); got != 2 {
		t.Errorf("Tokens after 6 = %d, want 2", got)
	}
	advance(500 * time.Millisecond)
	if got := l.Tokens("k"); got != 4 {
		t.Errorf("Tokens after refill = %d, want 4", got)
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(0, 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("allowed %d requests, want exactly the burst of 100", allowed)
	}
}

func TestNewToolLimiters(t *testing.T) {
	limiters := NewToolLimiters()

	tests := []struct {
		tool  string
		burst int
	}{
		{"fibertract_tick", 50},
		{"fibertract_inspect", 20},
		{"fibertract_modulate", 10},
		{"fibertract_snapshot", 3},
		{"fibertract_restore", 2},
		{"fibertract_presets", 10},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			limiter, ok := limiters[tt.tool]
			if !ok {
				t.Fatalf("missing limiter for %s", tt.tool)
			}
			if limiter.burst != tt.burst {
				t.Errorf("burst = %d, want %d", limiter.burst, tt.burst)
			}
		})
	}
}

func TestCheckLimit(t *testing.T) {
	limiters := NewToolLimiters()
	limiters.Set("fibertract_restore", 0, 1)

	if err := CheckLimit(limiters, "unknown_tool"); err != nil {
		t.Errorf("unknown tool should not be limited: %v", err)
	}
	if err := CheckLimit(limiters, "fibertract_restore"); err != nil {
		t.Fatalf("first restore: %v", err)
	}
	err := CheckLimit(limiters, "fibertract_restore")
	if !errors.Is(err, ErrLimited) {
		t.Errorf("second restore = %v, want ErrLimited", err)
	}
}
