package dectlock

import (
	"testing"
	"time"
)

func TestExpiredOn(t *testing.T) {
	t.Parallel()

	l := Lock{DECTCode: "27527", UserID: "user_1", LockDate: "2026-08-28"}

	if l.ExpiredOn("2026-08-28") {
		t.Fatalf("lock must be live on its own day")
	}
	if !l.ExpiredOn("2026-08-29") {
		t.Fatalf("yesterday's lock must read as expired")
	}
}

func TestOwnedBy(t *testing.T) {
	t.Parallel()

	l := Lock{DECTCode: "27527", UserID: "user_1"}
	if !l.OwnedBy("user_1") {
		t.Fatalf("expected owner match")
	}
	if l.OwnedBy("user_2") {
		t.Fatalf("unexpected owner match")
	}
}

func TestToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 28, 14, 30, 0, 0, time.UTC)
	if got := Today(now); got != "2026-08-28" {
		t.Fatalf("Today() = %q", got)
	}
}

func TestFormatLockTime(t *testing.T) {
	t.Parallel()

	claimed := time.Date(2026, time.August, 28, 7, 5, 0, 0, time.Local)
	l := Lock{LockTime: claimed.UnixMilli()}
	if got := l.FormatLockTime(); got != "07:05" {
		t.Fatalf("FormatLockTime() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Lock{DECTCode: "27527", UserID: "user_1"}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Lock{UserID: "user_1"}).Validate(); err == nil {
		t.Fatalf("expected error for missing dect code")
	}
	if err := (Lock{DECTCode: "27527"}).Validate(); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}
