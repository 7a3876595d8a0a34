package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bringolino/bringolino/internal/infrastructure/repository/memory"
)

// BootstrapSeed inserts the starter tasks into an empty store. Existing
// deployments are left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM bringolino_tasks WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count tasks for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTasks() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO bringolino_tasks (public_id, title, description, priority, status, assigned_to, department, location, due_date, created_at, updated_at)
VALUES (:public_id, :title, :description, :priority, :status, :assigned_to, :department, :location, :due_date, :created_at, :updated_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":   t.ID,
			"title":       t.Title,
			"description": t.Description,
			"priority":    string(t.Priority),
			"status":      string(t.Status),
			"assigned_to": t.AssignedTo,
			"department":  t.Department,
			"location":    t.Location,
			"due_date":    nullTimeFrom(t.DueDate),
			"created_at":  t.CreatedAt,
			"updated_at":  t.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed task %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
