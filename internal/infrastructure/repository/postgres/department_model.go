package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/bringolino/bringolino/internal/domain/department"
)

type departmentTableModel struct {
	ID                  int64         `db:"id"`
	Department          string        `db:"department"`
	Date                string        `db:"date"`
	CompletedTaskIDs    pq.Int64Array `db:"completed_task_ids"`
	DocumentationChecks []byte        `db:"documentation_checks"`
	ApothekeChecks      []byte        `db:"apotheke_checks"`
	Points              int           `db:"points"`
	LastUpdate          int64         `db:"last_update"`
	DeviceID            string        `db:"device_id"`
	UserID              string        `db:"user_id"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

func (m departmentTableModel) toDomain() (department.Snapshot, error) {
	completed := make(map[int]struct{}, len(m.CompletedTaskIDs))
	for _, id := range m.CompletedTaskIDs {
		completed[int(id)] = struct{}{}
	}

	docChecks, err := decodeChecks(m.DocumentationChecks)
	if err != nil {
		return department.Snapshot{}, fmt.Errorf("decode documentation checks: %w", err)
	}
	apoChecks, err := decodeChecks(m.ApothekeChecks)
	if err != nil {
		return department.Snapshot{}, fmt.Errorf("decode apotheke checks: %w", err)
	}

	return department.Snapshot{
		Department:          m.Department,
		Date:                m.Date,
		CompletedTaskIDs:    completed,
		DocumentationChecks: docChecks,
		ApothekeChecks:      apoChecks,
		Points:              m.Points,
		LastUpdate:          m.LastUpdate,
		DeviceID:            m.DeviceID,
		UserID:              m.UserID,
	}, nil
}

func completedIDsColumn(s department.Snapshot) pq.Int64Array {
	ids := s.SortedTaskIDs()
	out := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}

func encodeChecks(checks map[string]bool) ([]byte, error) {
	if checks == nil {
		checks = map[string]bool{}
	}
	return sonic.Marshal(checks)
}

func decodeChecks(raw []byte) (map[string]bool, error) {
	if len(raw) == 0 {
		return map[string]bool{}, nil
	}
	var out map[string]bool
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]bool{}
	}
	return out, nil
}
