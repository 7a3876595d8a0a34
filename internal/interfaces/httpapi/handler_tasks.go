package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/bringolino/bringolino/internal/usecase"
)

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTasks")
	defer span.End()

	tasks, err := h.taskService.ListTasks(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tasks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTask")
	defer span.End()

	taskID := strings.TrimSpace(r.PathValue("taskID"))
	t, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		h.logger.WarnContext(ctx, "get task failed", "task_id", taskID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, taskToDTO(t))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTask")
	defer span.End()

	var req taskWriteRequest
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

	t, err := req.toDomain()
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid due date: %v", usecase.ErrInvalidInput, err))
		return
	}
	if ident, ok := identityFromContext(ctx); ok && t.AssignedTo == "" {
		t.AssignedTo = ident.UserName
	}

	created, err := h.taskService.CreateTask(ctx, t)
	if err != nil {
		h.logger.WarnContext(ctx, "create task failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, taskToDTO(created))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTask")
	defer span.End()

	taskID := strings.TrimSpace(r.PathValue("taskID"))

	var req taskWriteRequest
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

	t, err := req.toDomain()
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid due date: %v", usecase.ErrInvalidInput, err))
		return
	}
	t.ID = taskID

	updated, err := h.taskService.UpdateTask(ctx, t)
	if err != nil {
		h.logger.WarnContext(ctx, "update task failed", "task_id", taskID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, taskToDTO(updated))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTask")
	defer span.End()

	taskID := strings.TrimSpace(r.PathValue("taskID"))
	if err := h.taskService.DeleteTask(ctx, taskID); err != nil {
		h.logger.WarnContext(ctx, "delete task failed", "task_id", taskID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deleted": taskID})
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDepartments")
	defer span.End()

	departments := h.taskService.Departments()
	items := make([]departmentDTO, 0, len(departments))
	for _, d := range departments {
		items = append(items, departmentDTO{DECTCode: d.DECTCode, Name: d.Name})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTemplates")
	defer span.End()

	dectCode := strings.TrimSpace(r.PathValue("dectCode"))
	templates, err := h.taskService.Templates(dectCode, time.Now())
	if err != nil {
		h.logger.WarnContext(ctx, "list templates failed", "dect_code", dectCode, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]templateDTO, 0, len(templates))
	for _, view := range templates {
		items = append(items, templateToDTO(view))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
