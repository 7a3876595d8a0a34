package postgres

import (
	"database/sql"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(fakeErr("pq: relation department_data does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
	if isNotFound(nil) {
		t.Fatalf("expected false for nil")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
