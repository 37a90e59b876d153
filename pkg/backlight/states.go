package backlight

// Redis hash keys / pub-sub channel names. By convention the channel name
// equals the hash key and the published payload is the field that changed.
const (
	KeySystem   = "system"
	KeyKeyboard = "keyboard"
	KeyDisplay  = "display"
	KeyActivity = "activity"
	KeyAlarm    = "alarm"
	KeyLock     = "lock"

	// KeyBacklight is the hash/channel this service owns.
	KeyBacklight = "keypad-backlight"

	// KeyStateRequests is the list polled for state query requests;
	// each element names the reply channel.
	KeyStateRequests = "keypad-backlight:requests"
)

type systemState int

const (
	systemUnknown systemState = iota
	systemUser
	systemActDead
	systemBoot
	systemShutdown
)

func parseSystemState(s string) systemState {
	switch s {
	case "user":
		return systemUser
	case "act-dead":
		return systemActDead
	case "boot":
		return systemBoot
	case "shutdown":
		return systemShutdown
	default:
		return systemUnknown
	}
}

type coverState int

const (
	coverUnknown coverState = iota
	coverOpen
	coverClosed
)

func parseCoverState(s string) coverState {
	switch s {
	case "open":
		return coverOpen
	case "closed":
		return coverClosed
	default:
		return coverUnknown
	}
}

type displayState int

const (
	displayUnknown displayState = iota
	displayOn
	displayDim
	displayOff
	displayLPMOn
	displayLPMOff
)

func parseDisplayState(s string) displayState {
	switch s {
	case "on":
		return displayOn
	case "dim":
		return displayDim
	case "off":
		return displayOff
	case "lpm-on":
		return displayLPMOn
	case "lpm-off":
		return displayLPMOff
	default:
		return displayUnknown
	}
}

type alarmState int

const (
	alarmOff alarmState = iota
	alarmVisible
	alarmRinging
	alarmSnoozed
)

func parseAlarmState(s string) alarmState {
	switch s {
	case "visible":
		return alarmVisible
	case "ringing":
		return alarmRinging
	case "snoozed":
		return alarmSnoozed
	default:
		return alarmOff
	}
}
