package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
)

type DECTLockRepository struct {
	mu    sync.RWMutex
	items map[string]dectlock.Lock
}

func NewDECTLockRepository() *DECTLockRepository {
	return &DECTLockRepository{
		items: make(map[string]dectlock.Lock),
	}
}

func (r *DECTLockRepository) Upsert(_ context.Context, l dectlock.Lock) error {
	if err := l.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[l.DECTCode] = l
	r.mu.Unlock()

	return nil
}

func (r *DECTLockRepository) Delete(_ context.Context, dectCode string) error {
	r.mu.Lock()
	delete(r.items, dectCode)
	r.mu.Unlock()

	return nil
}

func (r *DECTLockRepository) List(_ context.Context) ([]dectlock.Lock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dectlock.Lock, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DECTCode < out[j].DECTCode
	})

	return out, nil
}
