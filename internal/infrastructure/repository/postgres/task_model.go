package postgres

import (
	"database/sql"
	"time"

	"github.com/bringolino/bringolino/internal/domain/task"
)

type taskTableModel struct {
	ID          int64        `db:"id"`
	PublicID    string       `db:"public_id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Priority    string       `db:"priority"`
	Status      string       `db:"status"`
	AssignedTo  string       `db:"assigned_to"`
	Department  string       `db:"department"`
	Location    string       `db:"location"`
	DueDate     sql.NullTime `db:"due_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	DeletedAt   *time.Time   `db:"deleted_at"`
}

func (m taskTableModel) toDomain() task.Task {
	t := task.Task{
		ID:          m.PublicID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    task.Priority(m.Priority),
		Status:      task.Status(m.Status),
		AssignedTo:  m.AssignedTo,
		Department:  m.Department,
		Location:    m.Location,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DueDate.Valid {
		due := m.DueDate.Time
		t.DueDate = &due
	}
	return t
}

func nullTimeFrom(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
