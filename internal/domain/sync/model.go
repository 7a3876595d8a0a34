package sync

import (
	"time"

	"github.com/bringolino/bringolino/internal/domain/department"
)

// QueueEntry is one buffered write waiting for connectivity. Entries live
// only in process memory and are owned exclusively by the sync service.
type QueueEntry struct {
	Table    string
	Snapshot department.Snapshot
	// IsUpdate records whether the write entered as a first save or a
	// later sync. Replay upserts the whole row either way; the flag is
	// diagnostic only.
	IsUpdate   bool
	EnqueuedAt time.Time
	// Attempts counts failed replays; NextAttemptAt gates the next one
	// (bounded exponential backoff).
	Attempts      int
	NextAttemptAt time.Time
}

// DeadLetter is a queue entry given up on after exhausting its attempts.
// It is surfaced to the caller instead of being retried forever.
type DeadLetter struct {
	Entry     QueueEntry
	Reason    string
	DroppedAt time.Time
}
