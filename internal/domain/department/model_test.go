package department

import (
	"testing"

	"github.com/bringolino/bringolino/internal/domain/task"
)

func testTemplates() []task.TemplateTask {
	return []task.TemplateTask{
		{ID: 1, Time: "06:30", Title: "Morgenrunde", Priority: task.PriorityHigh},
		{ID: 2, Time: "08:00", Title: "Post Service", Priority: task.PriorityMedium},
		{ID: 3, Time: "12:00-12:30", Title: "Mittagspause", Priority: task.PriorityBreak},
		{ID: 4, Time: "13:00", Title: "Essenswagen", Priority: task.PriorityMedium},
	}
}

func TestComputePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot Snapshot
		want     int
	}{
		{
			name:     "empty snapshot scores nothing",
			snapshot: Snapshot{},
			want:     0,
		},
		{
			name: "scored tasks earn fifteen each",
			snapshot: Snapshot{
				CompletedTaskIDs: map[int]struct{}{1: {}, 2: {}},
			},
			want: 30,
		},
		{
			name: "break slot never scores",
			snapshot: Snapshot{
				CompletedTaskIDs: map[int]struct{}{3: {}},
			},
			want: 0,
		},
		{
			name: "unknown ids score nothing",
			snapshot: Snapshot{
				CompletedTaskIDs: map[int]struct{}{99: {}},
			},
			want: 0,
		},
		{
			name: "checks earn ten each, unticked ignored",
			snapshot: Snapshot{
				CompletedTaskIDs:    map[int]struct{}{1: {}},
				DocumentationChecks: map[string]bool{"uebergabe": true, "schluessel": false},
				ApothekeChecks:      map[string]bool{"kuehlkette": true},
			},
			want: 35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComputePoints(tt.snapshot, testTemplates()); got != tt.want {
				t.Fatalf("ComputePoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToggleRecomputesPoints(t *testing.T) {
	t.Parallel()

	s := Snapshot{Department: "27527", Date: "2026-08-28", UserID: "user_1"}

	s = s.Toggle(1)
	if _, ok := s.CompletedTaskIDs[1]; !ok {
		t.Fatalf("expected task 1 completed")
	}
	if s.Points != PointsPerTask {
		t.Fatalf("unexpected points after toggle on: %d", s.Points)
	}

	s = s.Toggle(1)
	if _, ok := s.CompletedTaskIDs[1]; ok {
		t.Fatalf("expected task 1 cleared")
	}
	if s.Points != 0 {
		t.Fatalf("unexpected points after toggle off: %d", s.Points)
	}
}

func TestToggleDoesNotShareState(t *testing.T) {
	t.Parallel()

	original := Snapshot{
		Department:       "27527",
		CompletedTaskIDs: map[int]struct{}{1: {}},
	}

	toggled := original.Toggle(2)
	if len(original.CompletedTaskIDs) != 1 {
		t.Fatalf("original snapshot mutated: %v", original.CompletedTaskIDs)
	}
	if len(toggled.CompletedTaskIDs) != 2 {
		t.Fatalf("unexpected toggled set: %v", toggled.CompletedTaskIDs)
	}
}

func TestCompletionRate(t *testing.T) {
	t.Parallel()

	s := Snapshot{CompletedTaskIDs: map[int]struct{}{1: {}, 3: {}}}
	if got := s.CompletionRate(testTemplates()); got != 50 {
		t.Fatalf("CompletionRate() = %v, want 50", got)
	}
	if got := s.CompletionRate(nil); got != 0 {
		t.Fatalf("CompletionRate(nil) = %v, want 0", got)
	}
}

func TestSortedTaskIDs(t *testing.T) {
	t.Parallel()

	s := Snapshot{CompletedTaskIDs: map[int]struct{}{4: {}, 1: {}, 3: {}}}
	got := s.SortedTaskIDs()
	want := []int{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("unexpected ids: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected ids: %v", got)
		}
	}
}

func TestNewerThan(t *testing.T) {
	t.Parallel()

	older := Snapshot{LastUpdate: 100}
	newer := Snapshot{LastUpdate: 200}

	if !newer.NewerThan(older) {
		t.Fatalf("expected newer snapshot to win")
	}
	if older.NewerThan(newer) {
		t.Fatalf("stale snapshot must not win")
	}
	if older.NewerThan(older) {
		t.Fatalf("equal timestamps must not count as newer")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Snapshot{Department: "27527", Date: "2026-08-28", UserID: "user_1"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing department", func(s *Snapshot) { s.Department = "" }},
		{"missing date", func(s *Snapshot) { s.Date = "" }},
		{"missing user", func(s *Snapshot) { s.UserID = "" }},
		{"negative points", func(s *Snapshot) { s.Points = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
