package department

import "context"

// Repository describes snapshot persistence needs from the sync core.
type Repository interface {
	Get(ctx context.Context, dept, date, userID string) (Snapshot, bool, error)
	// Upsert inserts or replaces the row keyed by (department, date,
	// user_id). A stored row with a newer last_update wins; the incoming
	// snapshot is discarded in that case.
	Upsert(ctx context.Context, s Snapshot) error
	// ListAll returns every stored snapshot ordered by last_update
	// descending, for the supervisor dashboard.
	ListAll(ctx context.Context) ([]Snapshot, error)
}
