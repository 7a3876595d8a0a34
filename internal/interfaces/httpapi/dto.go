package httpapi

import (
	"time"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/domain/department"
	"github.com/bringolino/bringolino/internal/domain/task"
	"github.com/bringolino/bringolino/internal/usecase"
)

type taskDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	AssignedTo  string  `json:"assignedTo,omitempty"`
	Department  string  `json:"department"`
	Location    string  `json:"location,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func taskToDTO(t task.Task) taskDTO {
	dto := taskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		AssignedTo:  t.AssignedTo,
		Department:  t.Department,
		Location:    t.Location,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &due
	}
	return dto
}

type taskWriteRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent break"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	AssignedTo  string  `json:"assignedTo" validate:"max=100"`
	Department  string  `json:"department" validate:"required,max=10"`
	Location    string  `json:"location" validate:"max=200"`
	DueDate     *string `json:"dueDate" validate:"omitempty"`
}

func (req taskWriteRequest) toDomain() (task.Task, error) {
	t := task.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    task.Priority(req.Priority),
		Status:      task.Status(req.Status),
		AssignedTo:  req.AssignedTo,
		Department:  req.Department,
		Location:    req.Location,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return task.Task{}, err
		}
		t.DueDate = &due
	}
	return t, nil
}

type templateDTO struct {
	ID                int    `json:"id"`
	Time              string `json:"time"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Location          string `json:"location,omitempty"`
	Priority          string `json:"priority"`
	Condition         string `json:"condition,omitempty"`
	EstimatedDuration string `json:"estimatedDuration,omitempty"`
	Active            bool   `json:"active"`
	Scored            bool   `json:"scored"`
}

func templateToDTO(view usecase.TemplateView) templateDTO {
	tpl := view.Template
	return templateDTO{
		ID:                tpl.ID,
		Time:              tpl.Time,
		Title:             tpl.Title,
		Description:       tpl.Description,
		Location:          tpl.Location,
		Priority:          string(tpl.Priority),
		Condition:         tpl.Condition,
		EstimatedDuration: tpl.EstimatedDuration,
		Active:            view.Active,
		Scored:            tpl.Scored(),
	}
}

type departmentDTO struct {
	DECTCode string `json:"dectCode"`
	Name     string `json:"name"`
}

type snapshotDTO struct {
	Department          string          `json:"department"`
	Date                string          `json:"date"`
	CompletedTaskIDs    []int           `json:"completedTaskIds"`
	DocumentationChecks map[string]bool `json:"documentationChecks"`
	ApothekeChecks      map[string]bool `json:"apothekeChecks"`
	Points              int             `json:"points"`
	LastUpdate          int64           `json:"lastUpdate"`
	DeviceID            string          `json:"deviceId,omitempty"`
	UserID              string          `json:"userId"`
}

func snapshotToDTO(s department.Snapshot) snapshotDTO {
	docChecks := s.DocumentationChecks
	if docChecks == nil {
		docChecks = map[string]bool{}
	}
	apoChecks := s.ApothekeChecks
	if apoChecks == nil {
		apoChecks = map[string]bool{}
	}
	return snapshotDTO{
		Department:          s.Department,
		Date:                s.Date,
		CompletedTaskIDs:    s.SortedTaskIDs(),
		DocumentationChecks: docChecks,
		ApothekeChecks:      apoChecks,
		Points:              s.Points,
		LastUpdate:          s.LastUpdate,
		DeviceID:            s.DeviceID,
		UserID:              s.UserID,
	}
}

type saveSnapshotRequest struct {
	Date                string          `json:"date" validate:"required,len=10"`
	CompletedTaskIDs    []int           `json:"completedTaskIds"`
	DocumentationChecks map[string]bool `json:"documentationChecks"`
	ApothekeChecks      map[string]bool `json:"apothekeChecks"`
	LastUpdate          int64           `json:"lastUpdate"`
}

type toggleTaskRequest struct {
	Date   string `json:"date" validate:"required,len=10"`
	TaskID int    `json:"taskId" validate:"required"`
}

type snapshotWriteResponse struct {
	Snapshot snapshotDTO `json:"snapshot"`
	Synced   bool        `json:"synced"`
}

type lockDTO struct {
	DECTCode string `json:"dectCode"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	LockTime int64  `json:"lockTime"`
	LockedAt string `json:"lockedAt"`
	LockDate string `json:"lockDate"`
}

func lockToDTO(l dectlock.Lock) lockDTO {
	return lockDTO{
		DECTCode: l.DECTCode,
		UserID:   l.UserID,
		UserName: l.UserName,
		LockTime: l.LockTime,
		LockedAt: l.FormatLockTime(),
		LockDate: l.LockDate,
	}
}

type lockStateDTO struct {
	DECTCode string   `json:"dectCode"`
	State    string   `json:"state"`
	Lock     *lockDTO `json:"lock,omitempty"`
}

type acquireLockResponse struct {
	Acquired bool         `json:"acquired"`
	State    lockStateDTO `json:"state"`
}

type syncStatusDTO struct {
	Connected     bool   `json:"connected"`
	Initialized   bool   `json:"initialized"`
	PendingWrites int    `json:"pendingWrites"`
	DeadLetters   int    `json:"deadLetters"`
	LastProbeAt   string `json:"lastProbeAt,omitempty"`
}

func syncStatusToDTO(status usecase.SyncStatus) syncStatusDTO {
	dto := syncStatusDTO{
		Connected:     status.Connected,
		Initialized:   status.Initialized,
		PendingWrites: status.PendingWrites,
		DeadLetters:   status.DeadLetters,
	}
	if !status.LastProbeAt.IsZero() {
		dto.LastProbeAt = status.LastProbeAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type departmentStatsDTO struct {
	Department     string  `json:"department"`
	DepartmentName string  `json:"departmentName"`
	UserID         string  `json:"userId"`
	Points         int     `json:"points"`
	CompletedTasks int     `json:"completedTasks"`
	TotalTasks     int     `json:"totalTasks"`
	CompletionRate float64 `json:"completionRate"`
	LastUpdate     int64   `json:"lastUpdate"`
}

type dashboardDTO struct {
	Date        string               `json:"date"`
	TotalPoints int                  `json:"totalPoints"`
	Departments []departmentStatsDTO `json:"departments"`
	Locks       []lockDTO            `json:"locks"`
	GeneratedAt string               `json:"generatedAt"`
}

func dashboardToDTO(d usecase.Dashboard) dashboardDTO {
	dto := dashboardDTO{
		Date:        d.Date,
		TotalPoints: d.TotalPoints,
		Departments: make([]departmentStatsDTO, 0, len(d.Departments)),
		Locks:       make([]lockDTO, 0, len(d.Locks)),
		GeneratedAt: d.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for _, stats := range d.Departments {
		dto.Departments = append(dto.Departments, departmentStatsDTO{
			Department:     stats.Department,
			DepartmentName: stats.DepartmentName,
			UserID:         stats.UserID,
			Points:         stats.Points,
			CompletedTasks: stats.CompletedTasks,
			TotalTasks:     stats.TotalTasks,
			CompletionRate: stats.CompletionRate,
			LastUpdate:     stats.LastUpdate,
		})
	}
	for _, l := range d.Locks {
		dto.Locks = append(dto.Locks, lockToDTO(l))
	}
	return dto
}
