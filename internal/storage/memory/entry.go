package memory

import "time"

// Entry is a stored value and its optional absolute deadline.
// The zero ExpiresAt means the entry never expires.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// IsExpired reports whether the entry's deadline has been reached at now.
func (e Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(e.ExpiresAt)
}
