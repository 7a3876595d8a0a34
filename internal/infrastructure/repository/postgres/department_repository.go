package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bringolino/bringolino/internal/domain/department"
	qb "github.com/bringolino/bringolino/internal/platform/querybuilder"
)

type DepartmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Get(ctx context.Context, dept, date, userID string) (department.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("department_data").
		Where(
			qb.Eq("department", dept),
			qb.Eq("date", date),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return department.Snapshot{}, false, fmt.Errorf("build get department snapshot query: %w", err)
	}

	var row departmentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return department.Snapshot{}, false, nil
		}
		return department.Snapshot{}, false, fmt.Errorf("get department snapshot: %w", err)
	}

	snapshot, err := row.toDomain()
	if err != nil {
		return department.Snapshot{}, false, err
	}

	return snapshot, true, nil
}

// Upsert writes the snapshot keyed by (department, date, user_id). The
// conflict branch is guarded on last_update so a replayed stale snapshot
// never clobbers a fresher stored row.
func (r *DepartmentRepository) Upsert(ctx context.Context, s department.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	docChecks, err := encodeChecks(s.DocumentationChecks)
	if err != nil {
		return fmt.Errorf("encode documentation checks: %w", err)
	}
	apoChecks, err := encodeChecks(s.ApothekeChecks)
	if err != nil {
		return fmt.Errorf("encode apotheke checks: %w", err)
	}

	now := time.Now().UTC()
	query, args, err := qb.InsertInto("department_data").
		Columns(
			"department", "date", "completed_task_ids",
			"documentation_checks", "apotheke_checks", "points",
			"last_update", "device_id", "user_id", "created_at", "updated_at",
		).
		Values(
			s.Department, s.Date, completedIDsColumn(s),
			docChecks, apoChecks, s.Points,
			s.LastUpdate, s.DeviceID, s.UserID, now, now,
		).
		OnConflictUpdate(
			[]string{"department", "date", "user_id"},
			[]string{
				"completed_task_ids", "documentation_checks", "apotheke_checks",
				"points", "last_update", "device_id", "updated_at",
			},
		).
		UpdateWhere("department_data.last_update < EXCLUDED.last_update").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert department snapshot query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert department snapshot: %w", err)
	}

	return nil
}

func (r *DepartmentRepository) ListAll(ctx context.Context) ([]department.Snapshot, error) {
	query, args, err := qb.Select("*").From("department_data").
		OrderBy("last_update DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list department snapshots query: %w", err)
	}

	var rows []departmentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list department snapshots: %w", err)
	}

	out := make([]department.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}

	return out, nil
}
