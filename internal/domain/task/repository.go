package task

import "context"

// Repository describes task persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, taskID string) (Task, bool, error)
	Insert(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, taskID string) error
}
