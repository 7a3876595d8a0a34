package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/domain/department"
	"github.com/bringolino/bringolino/internal/domain/task"
	"github.com/bringolino/bringolino/internal/platform/cache"
)

// DepartmentStats summarizes one worker's day in one department.
type DepartmentStats struct {
	Department     string
	DepartmentName string
	Date           string
	UserID         string
	Points         int
	CompletedTasks int
	TotalTasks     int
	CompletionRate float64
	LastUpdate     int64
}

// Dashboard is the supervisor overview: every department's state for the
// day plus the live DECT locks.
type Dashboard struct {
	Date        string
	TotalPoints int
	Departments []DepartmentStats
	Locks       []dectlock.Lock
	GeneratedAt time.Time
}

type DashboardService struct {
	deptRepo department.Repository
	lockRepo dectlock.Repository
	store    *cache.Store
	now      func() time.Time
}

func NewDashboardService(deptRepo department.Repository, lockRepo dectlock.Repository, store *cache.Store) *DashboardService {
	return &DashboardService{
		deptRepo: deptRepo,
		lockRepo: lockRepo,
		store:    store,
		now:      time.Now,
	}
}

// Get builds the overview for the given day, or for today when date is
// empty. Results are cached briefly; concurrent supervisors share one
// repository round trip.
func (s *DashboardService) Get(ctx context.Context, date string) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if date == "" {
		date = s.now().Format(dectlock.DateLayout)
	} else if _, err := time.Parse(dectlock.DateLayout, date); err != nil {
		return Dashboard{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, date)
	}

	if s.store == nil {
		return s.build(ctx, date)
	}

	value, err := s.store.GetOrLoad(ctx, "dashboard:"+date, func(ctx context.Context) (any, error) {
		return s.build(ctx, date)
	})
	if err != nil {
		return Dashboard{}, err
	}

	dashboard, ok := value.(Dashboard)
	if !ok {
		return s.build(ctx, date)
	}
	return dashboard, nil
}

// Invalidate drops the cached overview for a day. Wired as the snapshot
// change handler so remote writes show up immediately.
func (s *DashboardService) Invalidate(ctx context.Context, date string) {
	if s.store == nil {
		return
	}
	s.store.Delete(ctx, "dashboard:"+date)
}

func (s *DashboardService) build(ctx context.Context, date string) (Dashboard, error) {
	snapshots, err := s.deptRepo.ListAll(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list department snapshots: %w", err)
	}

	names := task.Departments()
	dashboard := Dashboard{
		Date:        date,
		GeneratedAt: s.now().UTC(),
	}

	for _, snapshot := range snapshots {
		if snapshot.Date != date {
			continue
		}
		templates := task.TemplatesFor(snapshot.Department)
		dashboard.Departments = append(dashboard.Departments, DepartmentStats{
			Department:     snapshot.Department,
			DepartmentName: names[snapshot.Department],
			Date:           snapshot.Date,
			UserID:         snapshot.UserID,
			Points:         snapshot.Points,
			CompletedTasks: len(snapshot.CompletedTaskIDs),
			TotalTasks:     len(templates),
			CompletionRate: snapshot.CompletionRate(templates),
			LastUpdate:     snapshot.LastUpdate,
		})
		dashboard.TotalPoints += snapshot.Points
	}

	sort.Slice(dashboard.Departments, func(i, j int) bool {
		return dashboard.Departments[i].Department < dashboard.Departments[j].Department
	})

	if s.lockRepo != nil {
		locks, err := s.lockRepo.List(ctx)
		if err != nil {
			return Dashboard{}, fmt.Errorf("list dect locks: %w", err)
		}
		for _, l := range locks {
			if !l.ExpiredOn(date) {
				dashboard.Locks = append(dashboard.Locks, l)
			}
		}
	}

	return dashboard, nil
}
