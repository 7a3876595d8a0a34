package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	qb "github.com/bringolino/bringolino/internal/platform/querybuilder"
)

type DECTLockRepository struct {
	db *sqlx.DB
}

func NewDECTLockRepository(db *sqlx.DB) *DECTLockRepository {
	return &DECTLockRepository{db: db}
}

// Upsert claims the code. One row per dect_code with no guard: two racing
// claimants both succeed and the later write wins.
func (r *DECTLockRepository) Upsert(ctx context.Context, l dectlock.Lock) error {
	if err := l.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	query, args, err := qb.InsertInto("dect_locks").
		Columns(
			"dect_code", "user_id", "user_name", "lock_time", "lock_date",
			"created_at", "updated_at",
		).
		Values(
			l.DECTCode, l.UserID, l.UserName, l.LockTime, l.LockDate,
			now, now,
		).
		OnConflictUpdate(
			[]string{"dect_code"},
			[]string{"user_id", "user_name", "lock_time", "lock_date", "updated_at"},
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert dect lock query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert dect lock: %w", err)
	}

	return nil
}

func (r *DECTLockRepository) Delete(ctx context.Context, dectCode string) error {
	query, args, err := qb.DeleteFrom("dect_locks").
		Where(qb.Eq("dect_code", dectCode)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete dect lock query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete dect lock: %w", err)
	}

	return nil
}

func (r *DECTLockRepository) List(ctx context.Context) ([]dectlock.Lock, error) {
	query, args, err := qb.Select("*").From("dect_locks").
		OrderBy("dect_code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list dect locks query: %w", err)
	}

	var rows []dectLockTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list dect locks: %w", err)
	}

	out := make([]dectlock.Lock, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
