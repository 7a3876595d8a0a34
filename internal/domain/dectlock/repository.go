package dectlock

import "context"

// Repository describes lock persistence needs from the coordinator.
type Repository interface {
	// Upsert inserts or replaces the row keyed by dect_code. There is no
	// compare-and-swap: two racing claimants both succeed and the later
	// write wins.
	Upsert(ctx context.Context, l Lock) error
	Delete(ctx context.Context, dectCode string) error
	List(ctx context.Context) ([]Lock, error)
}
