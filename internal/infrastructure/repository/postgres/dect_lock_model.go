package postgres

import (
	"time"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
)

type dectLockTableModel struct {
	ID        int64     `db:"id"`
	DECTCode  string    `db:"dect_code"`
	UserID    string    `db:"user_id"`
	UserName  string    `db:"user_name"`
	LockTime  int64     `db:"lock_time"`
	LockDate  string    `db:"lock_date"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m dectLockTableModel) toDomain() dectlock.Lock {
	return dectlock.Lock{
		DECTCode: m.DECTCode,
		UserID:   m.UserID,
		UserName: m.UserName,
		LockTime: m.LockTime,
		LockDate: m.LockDate,
	}
}
