package backlight

import (
	"log"
	"strconv"
	"time"

	"github.com/librescoot/keypad-backlight-service/pkg/events"
)

// handleSystemState reacts to a system mode change. Any mode other than
// the interactive user mode turns the backlight off, regardless of every
// other input.
func (s *Service) handleSystemState() {
	if s.systemState() != systemUser {
		s.disable()
	}
}

// handleKeyboardSlide reacts to the keyboard slide opening or closing.
// Opening runs the enable policy unless the touchscreen/keypad lock is
// engaged; anything else turns the backlight off.
func (s *Service) handleKeyboardSlide() {
	if s.coverState() == coverOpen && !s.tklockEngaged() {
		s.enablePolicy()
	} else {
		s.disable()
	}
}

// handleDisplayState reacts to display state changes. Repeated
// notifications for the same state are no-ops.
func (s *Service) handleDisplayState() {
	state := s.displayState()
	if state == s.lastDisplay {
		return
	}

	switch state {
	case displayOff, displayLPMOff, displayLPMOn, displayDim:
		s.disable()
	case displayOn:
		if s.lastDisplay != displayOn {
			s.enablePolicy()
		}
	default:
		// Unknown display state, nothing to decide.
	}

	s.lastDisplay = state
}

// handleActivity reacts to the device idle flag. The backlight is only
// interesting when the device just became active.
func (s *Service) handleActivity() {
	if !s.deviceInactive() {
		s.enablePolicy()
	}
}

// enablePolicy decides whether the backlight may be enabled. It may only
// come on while the keyboard slide is open, and then only in the user
// mode or while an alarm dialog is up. A pending disable timeout is
// refreshed instead of re-emitting a brightness decision.
func (s *Service) enablePolicy() {
	if s.coverState() != coverOpen {
		return
	}

	alarm := s.alarmState()
	if s.systemState() == systemUser || alarm == alarmVisible || alarm == alarmRinging {
		if s.timer.Pending() {
			s.armTimeout()
		} else {
			s.enable()
		}
	}
}

// enable turns the backlight on at the configured level and arms the
// disable timeout.
func (s *Service) enable() {
	s.timer.Cancel()

	if s.coverState() != coverOpen {
		return
	}

	s.armTimeout()

	// If the backlight is off, turn it on.
	if s.brightness == 0 {
		s.emitBrightness(s.cfg.BacklightLevel)
	}
}

// disable cancels any pending timeout and unconditionally emits a
// brightness-off decision. The decision always flows to the writer; the
// writer itself skips redundant hardware work.
func (s *Service) disable() {
	s.timer.Cancel()
	s.emitBrightness(0)
}

func (s *Service) armTimeout() {
	s.timer.Arm(time.Duration(s.cfg.BacklightTimeout) * time.Second)
}

// emitBrightness applies a brightness decision: update state, broadcast
// on the bus (delivered synchronously, hardware first) and mirror the
// value to the state hash for external observers.
func (s *Service) emitBrightness(brightness int) {
	s.brightness = brightness
	s.enabled = brightness != 0

	s.bus.Publish(events.BrightnessChangedEvent{Level: brightness})

	if err := s.store.WriteAndPublishInt(KeyBacklight, "brightness", brightness); err != nil {
		log.Printf("Warning: failed to publish brightness: %v", err)
	}
	state := "off"
	if s.enabled {
		state = "on"
	}
	if err := s.store.WriteAndPublishString(KeyBacklight, "state", state); err != nil {
		log.Printf("Warning: failed to publish backlight state: %v", err)
	}
}

// State fetchers. Inputs are read from the shared state hashes on demand;
// a missing or unreadable value parses to the unknown/safe variant.

func (s *Service) systemState() systemState {
	val, err := s.store.GetString(KeySystem, "state")
	if err != nil {
		return systemUnknown
	}
	return parseSystemState(val)
}

func (s *Service) coverState() coverState {
	val, err := s.store.GetString(KeyKeyboard, "slide")
	if err != nil {
		return coverUnknown
	}
	return parseCoverState(val)
}

func (s *Service) displayState() displayState {
	val, err := s.store.GetString(KeyDisplay, "state")
	if err != nil {
		return displayUnknown
	}
	return parseDisplayState(val)
}

func (s *Service) alarmState() alarmState {
	val, err := s.store.GetString(KeyAlarm, "state")
	if err != nil {
		return alarmOff
	}
	return parseAlarmState(val)
}

func (s *Service) tklockEngaged() bool {
	val, err := s.store.GetString(KeyLock, "tklock")
	if err != nil {
		return false
	}
	return val == "engaged"
}

func (s *Service) deviceInactive() bool {
	val, err := s.store.GetString(KeyActivity, "inactive")
	if err != nil {
		// Without a readable flag, do not assume activity.
		return true
	}
	inactive, err := strconv.ParseBool(val)
	if err != nil {
		return true
	}
	return inactive
}
