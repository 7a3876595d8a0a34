package memory

import (
	"time"

	"github.com/bringolino/bringolino/internal/domain/task"
)

// SeedTasks returns a handful of ad hoc supervisor tasks so a store-less
// deployment starts with something to show. Shift-plan template tasks are
// compiled in and need no seeding.
func SeedTasks() []task.Task {
	now := time.Now().UTC()
	due := now.Add(4 * time.Hour)

	return []task.Task{
		{
			ID:          "seed-transport-labor",
			Title:       "Eiltransport Labor",
			Description: "Blutproben von Station 3B ins Zentrallabor bringen",
			Priority:    task.PriorityUrgent,
			Status:      task.StatusPending,
			Department:  "27527",
			Location:    "Station 3B",
			DueDate:     &due,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "seed-waesche-station",
			Title:       "Wäschewagen tauschen",
			Description: "Vollen Wäschewagen auf Station 5A gegen leeren tauschen",
			Priority:    task.PriorityMedium,
			Status:      task.StatusPending,
			Department:  "27522",
			Location:    "Station 5A",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "seed-magazin-nachschub",
			Title:       "Nachschub Verbandsmaterial",
			Description: "Verbandsmaterial aus dem Hauptmagazin an die Ambulanz liefern",
			Priority:    task.PriorityHigh,
			Status:      task.StatusInProgress,
			AssignedTo:  "Fr. Keller",
			Department:  "27530",
			Location:    "Ambulanz",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
