package backlight

import (
	"testing"
	"time"
)

func TestDisableTimer_Fire(t *testing.T) {
	fired := make(chan uint64, 4)
	dt := newDisableTimer(func(gen uint64) { fired <- gen })

	dt.Arm(10 * time.Millisecond)
	if !dt.Pending() {
		t.Fatal("Expected timer pending after Arm")
	}

	select {
	case gen := <-fired:
		if !dt.handleFire(gen) {
			t.Error("Expected a current fire to be accepted")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for fire")
	}

	if dt.Pending() {
		t.Error("Expected no pending timer after fire was handled")
	}
}

func TestDisableTimer_Cancel(t *testing.T) {
	fired := make(chan uint64, 4)
	dt := newDisableTimer(func(gen uint64) { fired <- gen })

	dt.Arm(10 * time.Millisecond)
	dt.Cancel()
	dt.Cancel() // idempotent

	if dt.Pending() {
		t.Error("Expected no pending timer after Cancel")
	}

	select {
	case gen := <-fired:
		// The fire may have raced the cancel; it must be rejected.
		if dt.handleFire(gen) {
			t.Error("Expected a cancelled fire to be rejected")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDisableTimer_RearmInvalidatesOldFire(t *testing.T) {
	fired := make(chan uint64, 4)
	dt := newDisableTimer(func(gen uint64) { fired <- gen })

	dt.Arm(5 * time.Millisecond)
	time.Sleep(30 * time.Millisecond) // let the first schedule fire
	dt.Arm(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	accepted := 0
	for {
		select {
		case gen := <-fired:
			if dt.handleFire(gen) {
				accepted++
			}
			continue
		default:
		}
		break
	}

	if accepted != 1 {
		t.Errorf("Expected exactly one accepted fire, got %d", accepted)
	}
}
