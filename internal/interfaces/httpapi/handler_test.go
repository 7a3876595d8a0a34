package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/bringolino/bringolino/internal/infrastructure/repository/memory"
	"github.com/bringolino/bringolino/internal/platform/cache"
	"github.com/bringolino/bringolino/internal/platform/logging"
	"github.com/bringolino/bringolino/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	taskRepo := memory.NewTaskRepository(memory.SeedTasks(), nil)
	deptRepo := memory.NewDepartmentRepository()
	lockRepo := memory.NewDECTLockRepository()

	syncService := usecase.NewSyncService(deptRepo, usecase.ProbeFunc(func(context.Context) error { return nil }), nil, logging.NewNop(), usecase.SyncServiceConfig{})
	syncService.Initialize(context.Background())
	lockService := usecase.NewLockService(lockRepo, logging.NewNop())
	taskService := usecase.NewTaskService(taskRepo)
	dashboardService := usecase.NewDashboardService(deptRepo, lockRepo, cache.NewStore(0))

	handler := NewHandler(syncService, lockService, taskService, dashboardService, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", "device_test")
	req.Header.Set("X-User-ID", "user_test")
	req.Header.Set("X-User-Name", "Tester")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := body["data"].(map[string]any)
	return data
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestRouter_TasksRequireIdentity(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without identity = %d, want 401", rec.Code)
	}
}

func TestRouter_TaskLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/tasks",
		`{"title":"Betten nach 3B","department":"27527","priority":"high"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%s", rec.Code, rec.Body.String())
	}
	created := decodeData(t, rec)
	taskID, _ := created["id"].(string)
	if taskID == "" {
		t.Fatalf("created task id missing: %v", created)
	}
	if created["status"] != "pending" {
		t.Fatalf("created status = %v, want pending", created["status"])
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/tasks/"+taskID,
		`{"title":"Betten nach 3B","department":"27527","priority":"high","status":"completed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if updated := decodeData(t, rec); updated["status"] != "completed" {
		t.Fatalf("updated status = %v, want completed", updated["status"])
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/tasks/"+taskID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/tasks/"+taskID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestRouter_CreateTaskRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), http.MethodPost, "/v1/tasks",
		`{"title":"X","department":"27527","bogus":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRouter_ToggleAndDashboard(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/departments/27527/snapshot/toggle",
		`{"date":"2026-08-28","taskId":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body=%s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	snapshot, _ := data["snapshot"].(map[string]any)
	if got, _ := snapshot["points"].(float64); got != 15 {
		t.Fatalf("points after toggle = %v, want 15", snapshot["points"])
	}
	if synced, _ := data["synced"].(bool); !synced {
		t.Fatalf("toggle not synced against memory store")
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/dashboard?date=2026-08-28", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	dashboard := decodeData(t, rec)
	if got, _ := dashboard["totalPoints"].(float64); got != 15 {
		t.Fatalf("dashboard total points = %v, want 15", dashboard["totalPoints"])
	}
}

func TestRouter_LockConflict(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/locks/27527", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first lock status = %d, body=%s", rec.Code, rec.Body.String())
	}

	// same code, different user
	req := httptest.NewRequest(http.MethodPost, "/v1/locks/27527", strings.NewReader(""))
	req.Header.Set("X-User-ID", "user_other")
	req.Header.Set("X-User-Name", "Other")
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)

	if other.Code != http.StatusConflict {
		t.Fatalf("second lock status = %d, want 409", other.Code)
	}
	data := decodeData(t, other)
	if acquired, _ := data["acquired"].(bool); acquired {
		t.Fatalf("second lock acquired = true, want false")
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/locks/27527", "")
	state := decodeData(t, rec)
	if state["state"] != "locked-by-me" {
		t.Fatalf("owner state = %v, want locked-by-me", state["state"])
	}
}

func TestRouter_SyncStatus(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/v1/sync/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d", rec.Code)
	}
	data := decodeData(t, rec)
	if connected, _ := data["connected"].(bool); !connected {
		t.Fatalf("sync status connected = false, want true")
	}
}
