package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/domain/department"
	departmentmock "github.com/bringolino/bringolino/internal/mocks/domain/department"
	dectlockmock "github.com/bringolino/bringolino/internal/mocks/domain/dectlock"
	"github.com/bringolino/bringolino/internal/platform/cache"
)

func TestDashboardService_Get_AggregatesDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	deptRepo := departmentmock.NewRepository(t)
	lockRepo := dectlockmock.NewRepository(t)

	snapshots := []department.Snapshot{
		{
			Department:       "27527",
			Date:             "2026-08-28",
			CompletedTaskIDs: map[int]struct{}{1: {}, 2: {}},
			Points:           30,
			LastUpdate:       200,
			UserID:           "user-1",
		},
		{
			Department:       "27530",
			Date:             "2026-08-28",
			CompletedTaskIDs: map[int]struct{}{1: {}},
			Points:           15,
			LastUpdate:       100,
			UserID:           "user-2",
		},
		{
			// previous day, must be excluded
			Department: "27527",
			Date:       "2026-08-27",
			Points:     90,
			LastUpdate: 50,
			UserID:     "user-1",
		},
	}
	locks := []dectlock.Lock{
		{DECTCode: "27527", UserID: "user-1", UserName: "A", LockDate: "2026-08-28"},
		{DECTCode: "27530", UserID: "user-9", UserName: "B", LockDate: "2026-08-27"},
	}

	deptRepo.On("ListAll", mock.Anything).Return(snapshots, nil).Once()
	lockRepo.On("List", mock.Anything).Return(locks, nil).Once()

	service := NewDashboardService(deptRepo, lockRepo, nil)
	dashboard, err := service.Get(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if dashboard.TotalPoints != 45 {
		t.Fatalf("total points = %d, want 45", dashboard.TotalPoints)
	}
	if len(dashboard.Departments) != 2 {
		t.Fatalf("department count = %d, want 2", len(dashboard.Departments))
	}
	if dashboard.Departments[0].Department != "27527" {
		t.Fatalf("departments not sorted by code: %+v", dashboard.Departments)
	}
	if dashboard.Departments[0].DepartmentName != "Kleiner Botendienst" {
		t.Fatalf("unexpected department name: %q", dashboard.Departments[0].DepartmentName)
	}
	if len(dashboard.Locks) != 1 || dashboard.Locks[0].DECTCode != "27527" {
		t.Fatalf("expired lock not filtered: %+v", dashboard.Locks)
	}
}

func TestDashboardService_Get_RejectsMalformedDate(t *testing.T) {
	t.Parallel()

	service := NewDashboardService(departmentmock.NewRepository(t), dectlockmock.NewRepository(t), nil)

	_, err := service.Get(context.Background(), "28.08.2026")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDashboardService_Get_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	deptRepo := departmentmock.NewRepository(t)
	lockRepo := dectlockmock.NewRepository(t)

	deptRepo.On("ListAll", mock.Anything).Return([]department.Snapshot(nil), nil).Twice()
	lockRepo.On("List", mock.Anything).Return([]dectlock.Lock(nil), nil).Twice()

	service := NewDashboardService(deptRepo, lockRepo, cache.NewStore(time.Minute))

	if _, err := service.Get(ctx, "2026-08-28"); err != nil {
		t.Fatalf("first get: %v", err)
	}
	// second read is served from cache, repos must not be hit again
	if _, err := service.Get(ctx, "2026-08-28"); err != nil {
		t.Fatalf("cached get: %v", err)
	}

	service.Invalidate(ctx, "2026-08-28")
	if _, err := service.Get(ctx, "2026-08-28"); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
}
