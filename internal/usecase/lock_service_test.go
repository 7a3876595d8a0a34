package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/infrastructure/repository/memory"
	"github.com/bringolino/bringolino/internal/platform/logging"
)

func newLockServiceAt(t *testing.T, now time.Time) (*LockService, *memory.DECTLockRepository) {
	t.Helper()
	repo := memory.NewDECTLockRepository()
	svc := NewLockService(repo, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestLockService_LockThenState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	svc, _ := newLockServiceAt(t, now)

	acquired, err := svc.Lock(context.Background(), "27527", "user-1", "Fr. Keller")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !acquired {
		t.Fatalf("Lock() = false on free code, want true")
	}

	if got := svc.State("27527", "user-1"); got != LockStateLockedByMe {
		t.Fatalf("State() for owner = %q, want %q", got, LockStateLockedByMe)
	}
	if got := svc.State("27527", "user-2"); got != LockStateLockedByOther {
		t.Fatalf("State() for other = %q, want %q", got, LockStateLockedByOther)
	}
	if got := svc.State("27530", "user-1"); got != LockStateUnlocked {
		t.Fatalf("State() for free code = %q, want %q", got, LockStateUnlocked)
	}

	info, ok := svc.Info("27527")
	if !ok {
		t.Fatalf("Info() missing for locked code")
	}
	if info.UserName != "Fr. Keller" || info.LockDate != "2026-08-28" {
		t.Fatalf("unexpected lock info: %+v", info)
	}
}

func TestLockService_LockHeldByOtherFails(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	svc, _ := newLockServiceAt(t, now)

	if _, err := svc.Lock(context.Background(), "27527", "user-1", "A"); err != nil {
		t.Fatalf("first lock: %v", err)
	}

	acquired, err := svc.Lock(context.Background(), "27527", "user-2", "B")
	if err != nil {
		t.Fatalf("second lock: %v", err)
	}
	if acquired {
		t.Fatalf("Lock() = true on held code, want false")
	}
}

func TestLockService_ReLockByOwnerSucceeds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	svc, _ := newLockServiceAt(t, now)

	if _, err := svc.Lock(context.Background(), "27527", "user-1", "A"); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	acquired, err := svc.Lock(context.Background(), "27527", "user-1", "A")
	if err != nil {
		t.Fatalf("re-lock: %v", err)
	}
	if !acquired {
		t.Fatalf("re-Lock() by owner = false, want true")
	}
}

func TestLockService_YesterdaysLockIsExpired(t *testing.T) {
	t.Parallel()

	svc, repo := newLockServiceAt(t, time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC))

	stale := dectlock.Lock{
		DECTCode: "27527",
		UserID:   "user-1",
		UserName: "A",
		LockTime: time.Date(2026, 8, 27, 16, 0, 0, 0, time.UTC).UnixMilli(),
		LockDate: "2026-08-27",
	}
	if err := repo.Upsert(context.Background(), stale); err != nil {
		t.Fatalf("seed stale lock: %v", err)
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := svc.State("27527", "user-2"); got != LockStateUnlocked {
		t.Fatalf("State() for expired lock = %q, want %q", got, LockStateUnlocked)
	}
	if _, ok := svc.Info("27527"); ok {
		t.Fatalf("Info() reported an expired lock")
	}

	// a different user can claim the code without any cleanup in between
	acquired, err := svc.Lock(context.Background(), "27527", "user-2", "B")
	if err != nil {
		t.Fatalf("lock over expired row: %v", err)
	}
	if !acquired {
		t.Fatalf("Lock() over expired row = false, want true")
	}
}

func TestLockService_UnlockIsIdempotentAndOwnerScoped(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	svc, _ := newLockServiceAt(t, now)

	if _, err := svc.Lock(context.Background(), "27527", "user-1", "A"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	// non-owner unlock is a no-op
	if err := svc.Unlock(context.Background(), "27527", "user-2"); err != nil {
		t.Fatalf("non-owner unlock: %v", err)
	}
	if got := svc.State("27527", "user-1"); got != LockStateLockedByMe {
		t.Fatalf("lock vanished after non-owner unlock")
	}

	if err := svc.Unlock(context.Background(), "27527", "user-1"); err != nil {
		t.Fatalf("owner unlock: %v", err)
	}
	if got := svc.State("27527", "user-1"); got != LockStateUnlocked {
		t.Fatalf("State() after unlock = %q, want %q", got, LockStateUnlocked)
	}

	// unlocking again stays successful
	if err := svc.Unlock(context.Background(), "27527", "user-1"); err != nil {
		t.Fatalf("repeated unlock: %v", err)
	}
}

func TestLockService_ApplyChangeUpdatesMirror(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	svc, _ := newLockServiceAt(t, now)

	remote := dectlock.Lock{
		DECTCode: "27530",
		UserID:   "user-9",
		UserName: "C",
		LockTime: now.UnixMilli(),
		LockDate: "2026-08-28",
	}
	svc.ApplyChange(remote, false)
	if got := svc.State("27530", "user-1"); got != LockStateLockedByOther {
		t.Fatalf("State() after remote lock = %q, want %q", got, LockStateLockedByOther)
	}

	svc.ApplyChange(remote, true)
	if got := svc.State("27530", "user-1"); got != LockStateUnlocked {
		t.Fatalf("State() after remote unlock = %q, want %q", got, LockStateUnlocked)
	}
}
