package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bringolino/bringolino/internal/domain/task"
	idgen "github.com/bringolino/bringolino/internal/platform/id"
	qb "github.com/bringolino/bringolino/internal/platform/querybuilder"
)

type TaskRepository struct {
	db  *sqlx.DB
	ids idgen.Generator
}

func NewTaskRepository(db *sqlx.DB, ids idgen.Generator) *TaskRepository {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	return &TaskRepository{db: db, ids: ids}
}

func (r *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	query, args, err := qb.Select("*").From("bringolino_tasks").
		Where(qb.IsNull("deleted_at")).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tasks query: %w", err)
	}

	var rows []taskTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}

	out := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (task.Task, bool, error) {
	query, args, err := qb.Select("*").From("bringolino_tasks").
		Where(
			qb.Eq("public_id", taskID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return task.Task{}, false, fmt.Errorf("build get task by id query: %w", err)
	}

	var row taskTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return task.Task{}, false, nil
		}
		return task.Task{}, false, fmt.Errorf("get task by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t task.Task) (task.Task, error) {
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

	query, args, err := qb.InsertInto("bringolino_tasks").
		Columns(
			"public_id", "title", "description", "priority", "status",
			"assigned_to", "department", "location", "due_date",
			"created_at", "updated_at",
		).
		Values(
			t.ID, t.Title, t.Description, string(t.Priority), string(t.Status),
			t.AssignedTo, t.Department, t.Location, nullTimeFrom(t.DueDate),
			t.CreatedAt, t.UpdatedAt,
		).
		ToSQL()
	if err != nil {
		return task.Task{}, fmt.Errorf("build insert task query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t task.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query, args, err := qb.Update("bringolino_tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("priority", string(t.Priority)).
		Set("status", string(t.Status)).
		Set("assigned_to", t.AssignedTo).
		Set("department", t.Department).
		Set("location", t.Location).
		Set("due_date", nullTimeFrom(t.DueDate)).
		Set("updated_at", t.UpdatedAt).
		Where(
			qb.Eq("public_id", t.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update task query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update task %s: no row", t.ID)
	}

	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := qb.Update("bringolino_tasks").
		Set("deleted_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", taskID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete task query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}
