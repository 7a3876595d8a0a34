package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/platform/logging"
)

// LockState classifies a DECT code for one viewer on one day.
type LockState string

const (
	LockStateUnlocked      LockState = "unlocked"
	LockStateLockedByMe    LockState = "locked-by-me"
	LockStateLockedByOther LockState = "locked-by-other"
)

// LockService coordinates day-scoped advisory locks on DECT codes. Locks
// are best effort: the store keeps one row per code with no
// compare-and-swap, and rows from a previous day are treated as absent
// without any cleanup write. A local mirror of the lock table is kept
// current via change notifications so reads rarely touch the store.
type LockService struct {
	repo   dectlock.Repository
	logger *logging.Logger
	now    func() time.Time

	mu    sync.RWMutex
	locks map[string]dectlock.Lock
}

func NewLockService(repo dectlock.Repository, logger *logging.Logger) *LockService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LockService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]dectlock.Lock),
	}
}

// Refresh reloads the local mirror from the store. Call it on startup and
// whenever connectivity returns; notifications keep it current in between.
func (s *LockService) Refresh(ctx context.Context) error {
	locks, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list dect locks: %w", err)
	}

	mirror := make(map[string]dectlock.Lock, len(locks))
	for _, l := range locks {
		mirror[l.DECTCode] = l
	}

	s.mu.Lock()
	s.locks = mirror
	s.mu.Unlock()

	return nil
}

// ApplyChange folds one remote lock change into the mirror. Wired as the
// ListenLocks handler.
func (s *LockService) ApplyChange(l dectlock.Lock, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deleted {
		delete(s.locks, l.DECTCode)
		return
	}
	s.locks[l.DECTCode] = l
}

// Lock claims the code for the user. It reports false when another user
// holds a live claim for today. Two devices racing past that check both
// write and the later one wins; the loser learns about it through the
// change feed.
func (s *LockService) Lock(ctx context.Context, dectCode, userID, userName string) (bool, error) {
	dectCode = strings.TrimSpace(dectCode)
	if dectCode == "" {
		return false, fmt.Errorf("%w: dect code is required", ErrInvalidInput)
	}
	if userID == "" {
		return false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	now := s.now()
	today := dectlock.Today(now)

	if existing, ok := s.lookup(dectCode); ok && !existing.ExpiredOn(today) && !existing.OwnedBy(userID) {
		return false, nil
	}

	claim := dectlock.Lock{
		DECTCode: dectCode,
		UserID:   userID,
		UserName: userName,
		LockTime: now.UnixMilli(),
		LockDate: today,
	}
	if err := s.repo.Upsert(ctx, claim); err != nil {
		return false, fmt.Errorf("claim dect lock: %w", err)
	}

	s.mu.Lock()
	s.locks[dectCode] = claim
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dect code locked", "dect_code", dectCode, "user_id", userID)
	return true, nil
}

// Unlock releases the code when the user holds it. Releasing a code held
// by someone else, or not held at all, is a successful no-op so retried
// unlocks stay idempotent.
func (s *LockService) Unlock(ctx context.Context, dectCode, userID string) error {
	dectCode = strings.TrimSpace(dectCode)
	if dectCode == "" {
		return fmt.Errorf("%w: dect code is required", ErrInvalidInput)
	}
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	existing, ok := s.lookup(dectCode)
	if !ok || !existing.OwnedBy(userID) {
		return nil
	}

	if err := s.repo.Delete(ctx, dectCode); err != nil {
		return fmt.Errorf("release dect lock: %w", err)
	}

	s.mu.Lock()
	delete(s.locks, dectCode)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dect code unlocked", "dect_code", dectCode, "user_id", userID)
	return nil
}

// State classifies the code for the viewing user on the current day.
func (s *LockService) State(dectCode, userID string) LockState {
	lock, ok := s.lookup(dectCode)
	if !ok || lock.ExpiredOn(dectlock.Today(s.now())) {
		return LockStateUnlocked
	}
	if lock.OwnedBy(userID) {
		return LockStateLockedByMe
	}
	return LockStateLockedByOther
}

// Info returns the live lock row for the code, if any. Expired rows are
// reported as absent.
func (s *LockService) Info(dectCode string) (dectlock.Lock, bool) {
	lock, ok := s.lookup(dectCode)
	if !ok || lock.ExpiredOn(dectlock.Today(s.now())) {
		return dectlock.Lock{}, false
	}
	return lock, true
}

// List returns every live lock, for the supervisor dashboard.
func (s *LockService) List(ctx context.Context) ([]dectlock.Lock, error) {
	locks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dect locks: %w", err)
	}

	today := dectlock.Today(s.now())
	out := locks[:0]
	for _, l := range locks {
		if !l.ExpiredOn(today) {
			out = append(out, l)
		}
	}

	return out, nil
}

func (s *LockService) lookup(dectCode string) (dectlock.Lock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locks[dectCode]
	return l, ok
}
