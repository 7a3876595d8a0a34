package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bringolino/bringolino/internal/domain/task"
	idgen "github.com/bringolino/bringolino/internal/platform/id"
)

type TaskRepository struct {
	mu    sync.RWMutex
	items map[string]task.Task
	ids   idgen.Generator
}

func NewTaskRepository(tasks []task.Task, ids idgen.Generator) *TaskRepository {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}

	items := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		items[t.ID] = t
	}

	return &TaskRepository{items: items, ids: ids}
}

func (r *TaskRepository) List(_ context.Context) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *TaskRepository) GetByID(_ context.Context, taskID string) (task.Task, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[taskID]
	if !ok {
		return task.Task{}, false, nil
	}

	return t, true, nil
}

func (r *TaskRepository) Insert(_ context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		publicID, err := r.ids.NewID()
		if err != nil {
			return task.Task{}, fmt.Errorf("generate task id: %w", err)
		}
		t.ID = publicID
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TaskRepository) Update(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[t.ID]
	if !ok {
		return fmt.Errorf("update task %s: no row", t.ID)
	}

	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.items[t.ID] = t

	return nil
}

func (r *TaskRepository) Delete(_ context.Context, taskID string) error {
	r.mu.Lock()
	delete(r.items, taskID)
	r.mu.Unlock()

	return nil
}
