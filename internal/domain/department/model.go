package department

import (
	"fmt"
	"sort"

	"github.com/bringolino/bringolino/internal/domain/task"
)

const (
	// PointsPerTask is awarded for each completed scored template task.
	PointsPerTask = 15
	// PointsPerCheck is awarded for each ticked checklist entry.
	PointsPerCheck = 10
)

// Snapshot is one worker's daily state for a department: which shift-plan
// tasks are done and which checklist entries are ticked. One logical row
// per (department, date, user); every sync overwrites it wholesale.
type Snapshot struct {
	Department          string
	Date                string // calendar day, "2006-01-02"
	CompletedTaskIDs    map[int]struct{}
	DocumentationChecks map[string]bool
	ApothekeChecks      map[string]bool
	Points              int
	LastUpdate          int64 // unix milliseconds
	DeviceID            string
	UserID              string
}

func (s Snapshot) Validate() error {
	if s.Department == "" {
		return fmt.Errorf("snapshot department is required")
	}
	if s.Date == "" {
		return fmt.Errorf("snapshot date is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("snapshot user id is required")
	}
	if s.Points < 0 {
		return fmt.Errorf("snapshot points cannot be negative")
	}

	return nil
}

// Toggle flips a task's completion and returns the snapshot with its points
// recomputed. Points are always derived from the completion sets, never
// adjusted incrementally, so client and store cannot drift apart.
func (s Snapshot) Toggle(taskID int) Snapshot {
	completed := make(map[int]struct{}, len(s.CompletedTaskIDs)+1)
	for id := range s.CompletedTaskIDs {
		completed[id] = struct{}{}
	}
	if _, ok := completed[taskID]; ok {
		delete(completed, taskID)
	} else {
		completed[taskID] = struct{}{}
	}

	s.CompletedTaskIDs = completed
	s.Points = ComputePoints(s, task.TemplatesFor(s.Department))
	return s
}

// ComputePoints derives the snapshot's score: 15 per completed scored
// template task plus 10 per ticked checklist entry. Completed ids with no
// matching template, and break slots, score nothing.
func ComputePoints(s Snapshot, templates []task.TemplateTask) int {
	scored := make(map[int]struct{}, len(templates))
	for _, tpl := range templates {
		if tpl.Scored() {
			scored[tpl.ID] = struct{}{}
		}
	}

	points := 0
	for id := range s.CompletedTaskIDs {
		if _, ok := scored[id]; ok {
			points += PointsPerTask
		}
	}
	for _, checked := range s.DocumentationChecks {
		if checked {
			points += PointsPerCheck
		}
	}
	for _, checked := range s.ApothekeChecks {
		if checked {
			points += PointsPerCheck
		}
	}

	return points
}

// CompletionRate returns the completed share of the department's shift plan
// in percent, 0 when no plan is maintained.
func (s Snapshot) CompletionRate(templates []task.TemplateTask) float64 {
	if len(templates) == 0 {
		return 0
	}

	completed := 0
	for _, tpl := range templates {
		if _, ok := s.CompletedTaskIDs[tpl.ID]; ok {
			completed++
		}
	}

	return float64(completed) / float64(len(templates)) * 100
}

// SortedTaskIDs returns the completed ids in ascending order, for stable
// serialization and display.
func (s Snapshot) SortedTaskIDs() []int {
	out := make([]int, 0, len(s.CompletedTaskIDs))
	for id := range s.CompletedTaskIDs {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// NewerThan reports whether s carries a fresher LastUpdate than other.
// The store's upsert keeps the newer snapshot, so offline replays of stale
// rows can never clobber fresher ones.
func (s Snapshot) NewerThan(other Snapshot) bool {
	return s.LastUpdate > other.LastUpdate
}
