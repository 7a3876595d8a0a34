package resilience

import (
	"testing"
	"time"
)

func TestBackoffDelayDoublesUntilCap(t *testing.T) {
	b := Backoff{Base: time.Second, Cap: 10 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{20, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: got %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoffZeroValueUsesDefaults(t *testing.T) {
	var b Backoff
	if got := b.Delay(1); got != DefaultBackoff().Base {
		t.Fatalf("got %v, want default base %v", got, DefaultBackoff().Base)
	}
}
