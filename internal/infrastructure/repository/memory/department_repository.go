package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bringolino/bringolino/internal/domain/department"
)

type snapshotKey struct {
	department string
	date       string
	userID     string
}

type DepartmentRepository struct {
	mu    sync.RWMutex
	items map[snapshotKey]department.Snapshot
}

func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{
		items: make(map[snapshotKey]department.Snapshot),
	}
}

func (r *DepartmentRepository) Get(_ context.Context, dept, date, userID string) (department.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[snapshotKey{department: dept, date: date, userID: userID}]
	if !ok {
		return department.Snapshot{}, false, nil
	}

	return s, true, nil
}

func (r *DepartmentRepository) Upsert(_ context.Context, s department.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	key := snapshotKey{department: s.Department, date: s.Date, userID: s.UserID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.items[key]; ok && !s.NewerThan(stored) {
		return nil
	}
	r.items[key] = s

	return nil
}

func (r *DepartmentRepository) ListAll(_ context.Context) ([]department.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]department.Snapshot, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdate > out[j].LastUpdate
	})

	return out, nil
}
