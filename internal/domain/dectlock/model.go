package dectlock

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day form stored in lock rows.
const DateLayout = "2006-01-02"

// Lock marks a DECT code as claimed by one worker's device for one calendar
// day. It is advisory: the store enforces nothing beyond one row per code
// (upsert keyed on dect_code, last writer wins).
type Lock struct {
	DECTCode string
	UserID   string
	UserName string
	LockTime int64 // unix milliseconds
	LockDate string
}

func (l Lock) Validate() error {
	if l.DECTCode == "" {
		return fmt.Errorf("lock dect code is required")
	}
	if l.UserID == "" {
		return fmt.Errorf("lock user id is required")
	}
	return nil
}

// ExpiredOn reports whether the lock is stale for the given day. Expiry is
// purely read-side: a row from yesterday is treated as absent without any
// cleanup write.
func (l Lock) ExpiredOn(day string) bool {
	return l.LockDate != day
}

// OwnedBy reports whether the lock belongs to the given user.
func (l Lock) OwnedBy(userID string) bool {
	return l.UserID == userID
}

// Today returns the current calendar day in stored form.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// FormatLockTime renders the lock's claim time as HH:MM for display.
func (l Lock) FormatLockTime() string {
	return time.UnixMilli(l.LockTime).Format("15:04")
}
