package task

import "testing"

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := Task{
		Title:      "Blutprobe Transport",
		Department: "27527",
		Priority:   PriorityHigh,
		Status:     StatusPending,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing title", func(tk *Task) { tk.Title = "" }},
		{"missing department", func(tk *Task) { tk.Department = "" }},
		{"invalid priority", func(tk *Task) { tk.Priority = "sofort" }},
		{"invalid status", func(tk *Task) { tk.Status = "done" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tk := valid
			tt.mutate(&tk)
			if err := tk.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
