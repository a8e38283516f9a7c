package cognition

import (
	"sync"
	"time"
)

// ActivityTracker caches the timestamp of the last user action. It is the
// basis for inactivity detection. Safe for concurrent use.
type ActivityTracker struct {
	mu           sync.RWMutex
	lastActivity time.Time
	onActivity   func()
}

// NewActivityTracker starts the clock at now.
func NewActivityTracker(now time.Time) *ActivityTracker {
	return &ActivityTracker{lastActivity: now}
}

// SetOnActivity sets a callback fired on every RecordActivity (the scheduler
// uses it to drop out of Thinking when the user comes back).
func (t *ActivityTracker) SetOnActivity(f func()) {
	t.mu.Lock()
	t.onActivity = f
	t.mu.Unlock()
}

// RecordActivity stores now as the last-activity time and fires the callback.
func (t *ActivityTracker) RecordActivity(now time.Time) {
	t.mu.Lock()
	t.lastActivity = now
	f := t.onActivity
	t.mu.Unlock()
	if f != nil {
		f()
	}
}

// TimeSinceActivity returns elapsed time since the last user action.
func (t *ActivityTracker) TimeSinceActivity(now time.Time) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastActivity.IsZero() {
		return 0
	}
	d := now.Sub(t.lastActivity)
	if d < 0 {
		return 0
	}
	return d
}

// Rewind moves the last-activity timestamp back by d so the inactivity
// threshold can be satisfied promptly (used by resume).
func (t *ActivityTracker) Rewind(d time.Duration) {
	t.mu.Lock()
	t.lastActivity = t.lastActivity.Add(-d)
	t.mu.Unlock()
}

// LastActivity returns the raw timestamp.
func (t *ActivityTracker) LastActivity() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastActivity
}
