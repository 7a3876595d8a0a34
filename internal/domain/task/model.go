package task

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
	// PriorityBreak marks shift-plan pause slots; it never scores points.
	PriorityBreak Priority = "break"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Task is an ad hoc logistics task managed through the supervisor views.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	AssignedTo  string
	Department  string
	Location    string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if t.Department == "" {
		return fmt.Errorf("task department is required")
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityBreak:
	default:
		return fmt.Errorf("invalid task priority %q", t.Priority)
	}
	switch t.Status {
	case StatusPending, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("invalid task status %q", t.Status)
	}

	return nil
}
