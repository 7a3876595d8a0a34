package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bringolino/bringolino/internal/domain/task"
)

// TaskService manages ad hoc tasks and exposes the compiled shift plans.
type TaskService struct {
	taskRepo task.Repository
}

func NewTaskService(taskRepo task.Repository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]task.Task, error) {
	ctx, span := startUsecaseSpan(ctx, "TaskService.ListTasks")
	defer span.End()

	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID string) (task.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return task.Task{}, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}

	t, exists, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	if !exists {
		return task.Task{}, fmt.Errorf("%w: task=%s", ErrNotFound, taskID)
	}

	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	ctx, span := startUsecaseSpan(ctx, "TaskService.CreateTask")
	defer span.End()

	t.Title = strings.TrimSpace(t.Title)
	t.Department = strings.TrimSpace(t.Department)
	if t.Status == "" {
		t.Status = task.StatusPending
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return task.Task{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.taskRepo.Insert(ctx, t)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return created, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	ctx, span := startUsecaseSpan(ctx, "TaskService.UpdateTask")
	defer span.End()

	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return task.Task{}, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return task.Task{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, exists, err := s.taskRepo.GetByID(ctx, t.ID)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	if !exists {
		return task.Task{}, fmt.Errorf("%w: task=%s", ErrNotFound, t.ID)
	}

	if err := s.taskRepo.Update(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	return s.GetTask(ctx, t.ID)
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}

	_, exists, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: task=%s", ErrNotFound, taskID)
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// Departments returns the known DECT codes with their display names,
// sorted by code.
func (s *TaskService) Departments() []Department {
	byCode := task.Departments()
	out := make([]Department, 0, len(byCode))
	for code, name := range byCode {
		out = append(out, Department{DECTCode: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DECTCode < out[j].DECTCode
	})
	return out
}

// Department pairs a DECT code with its display name.
type Department struct {
	DECTCode string
	Name     string
}

// Templates returns the department's shift plan, with each slot's active
// window evaluated against now.
func (s *TaskService) Templates(dectCode string, now time.Time) ([]TemplateView, error) {
	dectCode = strings.TrimSpace(dectCode)
	if dectCode == "" {
		return nil, fmt.Errorf("%w: dect code is required", ErrInvalidInput)
	}
	if _, ok := task.Departments()[dectCode]; !ok {
		return nil, fmt.Errorf("%w: department=%s", ErrNotFound, dectCode)
	}

	templates := task.TemplatesFor(dectCode)
	out := make([]TemplateView, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, TemplateView{
			Template: tpl,
			Active:   tpl.IsActiveAt(now),
		})
	}

	return out, nil
}

// TemplateView is a shift-plan slot plus its time-window state.
type TemplateView struct {
	Template task.TemplateTask
	Active   bool
}
