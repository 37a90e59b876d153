package backlight

import "time"

// disableTimer is the single-slot deferred "turn the backlight off"
// schedule. At most one fire is ever outstanding: Arm always replaces any
// previous schedule and Cancel is idempotent.
//
// The fire callback runs on the runtime timer goroutine, so it only posts
// the generation number back to the owning event loop; the loop decides
// with handleFire whether the fire is still current. Arm, Cancel, Pending
// and handleFire must all be called from that loop.
type disableTimer struct {
	timer *time.Timer
	gen   uint64
	post  func(gen uint64)
}

func newDisableTimer(post func(gen uint64)) *disableTimer {
	return &disableTimer{post: post}
}

// Arm schedules a fire after d, cancelling any previous schedule first.
func (t *disableTimer) Arm(d time.Duration) {
	t.Cancel()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.post(gen)
	})
}

// Cancel drops any pending schedule. Safe to call when none is pending.
func (t *disableTimer) Cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a disable is currently scheduled.
func (t *disableTimer) Pending() bool {
	return t.timer != nil
}

// handleFire validates a posted fire. A fire from a cancelled or replaced
// schedule is ignored. On a current fire the slot is cleared before
// returning, so the disable path that follows sees no pending timeout and
// a concurrent re-arm cannot race a stale cancel.
func (t *disableTimer) handleFire(gen uint64) bool {
	if t.timer == nil || gen != t.gen {
		return false
	}
	t.timer = nil
	return true
}
