package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/bringolino/bringolino/internal/domain/department"
	"github.com/bringolino/bringolino/internal/domain/task"
	"github.com/bringolino/bringolino/internal/usecase"
)

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	snapshot, ok, err := h.syncService.GetSnapshot(ctx, dectCode, date, ident.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get snapshot failed", "dect_code", dectCode, "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: snapshot department=%s date=%s", usecase.ErrNotFound, dectCode, date))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

// SaveSnapshot overwrites the caller's snapshot for the day. The response
// always carries the accepted snapshot; synced=false means the write is
// buffered and will reach the store when connectivity returns.
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveSnapshot")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))

	var req saveSnapshotRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	completed := make(map[int]struct{}, len(req.CompletedTaskIDs))
	for _, id := range req.CompletedTaskIDs {
		completed[id] = struct{}{}
	}
	snapshot := department.Snapshot{
		Department:          dectCode,
		Date:                req.Date,
		CompletedTaskIDs:    completed,
		DocumentationChecks: req.DocumentationChecks,
		ApothekeChecks:      req.ApothekeChecks,
		LastUpdate:          req.LastUpdate,
		DeviceID:            ident.DeviceID,
		UserID:              ident.UserID,
	}

	synced := h.syncService.SaveSnapshot(ctx, snapshot)
	snapshot.Points = department.ComputePoints(snapshot, task.TemplatesFor(dectCode))

	if stored, ok, err := h.syncService.GetSnapshot(ctx, dectCode, req.Date, ident.UserID); err == nil && ok {
		snapshot = stored
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotWriteResponse{
		Snapshot: snapshotToDTO(snapshot),
		Synced:   synced,
	})
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleTask")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))

	var req toggleTaskRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	snapshot, synced, err := h.syncService.ToggleTask(ctx, dectCode, req.Date, ident.DeviceID, ident.UserID, req.TaskID)
	if err != nil {
		h.logger.WarnContext(ctx, "toggle task failed", "dect_code", dectCode, "task_id", req.TaskID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotWriteResponse{
		Snapshot: snapshotToDTO(snapshot),
		Synced:   synced,
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboard")
	defer span.End()

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	dashboard, err := h.dashboardService.Get(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "get dashboard failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dashboardToDTO(dashboard))
}
