package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("*").
		From("department_data").
		Where(Eq("department", "27527"), Eq("date", "2026-08-28")).
		OrderBy("last_update DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM department_data WHERE department = $1 AND date = $2 ORDER BY last_update DESC LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "27527" || args[1] != "2026-08-28" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderUpsert(t *testing.T) {
	query, args, err := InsertInto("dect_locks").
		Columns("dect_code", "user_id", "user_name", "lock_time", "lock_date").
		Values("27527", "u1", "Anna", int64(1000), "2026-08-28").
		OnConflictUpdate(
			[]string{"dect_code"},
			[]string{"user_id", "user_name", "lock_time", "lock_date"},
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO dect_locks (dect_code, user_id, user_name, lock_time, lock_date) " +
		"VALUES ($1, $2, $3, $4, $5) " +
		"ON CONFLICT (dect_code) DO UPDATE SET " +
		"user_id = EXCLUDED.user_id, user_name = EXCLUDED.user_name, " +
		"lock_time = EXCLUDED.lock_time, lock_date = EXCLUDED.lock_date"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderUpsertWithGuard(t *testing.T) {
	query, _, err := InsertInto("department_data").
		Columns("department", "date", "user_id", "last_update").
		Values("27527", "2026-08-28", "u1", int64(2000)).
		OnConflictUpdate(
			[]string{"department", "date", "user_id"},
			[]string{"last_update"},
		).
		UpdateWhere("department_data.last_update < EXCLUDED.last_update").
		ToSQL()
	if err != nil {
		t.Fatalf("build guarded upsert query: %v", err)
	}

	wantQuery := "INSERT INTO department_data (department, date, user_id, last_update) " +
		"VALUES ($1, $2, $3, $4) " +
		"ON CONFLICT (department, date, user_id) DO UPDATE SET last_update = EXCLUDED.last_update " +
		"WHERE department_data.last_update < EXCLUDED.last_update"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("bringolino_tasks").
		Set("status", "completed").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "t1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE bringolino_tasks SET status = $1, updated_at = NOW() WHERE public_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "completed" || args[1] != "t1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("dect_locks").
		Where(Eq("dect_code", "27527")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM dect_locks WHERE dect_code = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "27527" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilderRequiresConditions(t *testing.T) {
	if _, _, err := DeleteFrom("dect_locks").ToSQL(); err == nil {
		t.Fatal("expected error for unconditional delete")
	}
}
