package hardware

import "log"

// maximumLEDCurrent is the current-limit register value programmed on
// every backlight channel before a fade program runs.
const maximumLEDCurrent = 50

// Engine 3 mode register values.
const (
	engineModeDisabled = "disabled"
	engineModeLoad     = "load"
	engineModeRun      = "run"
)

// unsetBrightness is the "no brightness requested yet" sentinel.
const unsetBrightness = -1

// Writer applies brightness decisions to the keypad backlight hardware.
// All register writes are best effort: a failed write is logged and the
// rest of the sequence continues, so a flaky attribute never stalls the
// policy engine.
//
// Writer methods are not safe for concurrent use; the service invokes
// them from its single event loop.
type Writer struct {
	profile *Profile
	files   *fileSet
	encoder programEncoder

	// cached is the last requested brightness; repeated requests for
	// the same value are skipped entirely.
	cached int

	fadeInTime  int
	fadeOutTime int
}

// NewWriter creates a Writer for the resolved hardware profile.
// timeoutPending reports whether a disable timeout is currently armed;
// the encoder consults it to tell policy-driven brightness changes apart
// from ambient-light adjustments.
func NewWriter(profile *Profile, fadeInTime, fadeOutTime int, timeoutPending func() bool) *Writer {
	return &Writer{
		profile:     profile,
		files:       newFileSet(),
		encoder:     programEncoder{timeoutPending: timeoutPending},
		cached:      unsetBrightness,
		fadeInTime:  fadeInTime,
		fadeOutTime: fadeOutTime,
	}
}

// SetFadeTimes updates the fade durations, e.g. after a config reload.
func (w *Writer) SetFadeTimes(fadeInTime, fadeOutTime int) {
	w.fadeInTime = fadeInTime
	w.fadeOutTime = fadeOutTime
}

// SetBrightness drives the hardware to the requested brightness level.
// Rehashing the current value or passing the unset sentinel does nothing.
func (w *Writer) SetBrightness(brightness int) {
	if brightness == w.cached || brightness == unsetBrightness {
		return
	}
	w.cached = brightness

	fadeTime := w.fadeInTime
	if brightness == 0 {
		fadeTime = w.fadeOutTime
	}

	switch w.profile.Variant {
	case VariantLP5523A, VariantLP5523B:
		w.runEngineProgram(fadeTime, brightness)
	case VariantSimple:
		w.writeSimple(fadeTime, brightness)
	default:
		// No backlight hardware on this device.
	}
}

// runEngineProgram loads and starts a fade program on engine 3. The
// engine must be stopped while the load buffer and channel registers are
// rewritten, and current limits and the channel mask must be in place
// before the program is kicked off.
func (w *Writer) runEngineProgram(fadeTime, brightness int) {
	pattern, ok := w.encoder.encode(brightness, fadeTime)
	if !ok {
		return
	}

	w.writeString(w.profile.EngineModePath, engineModeDisabled)

	for _, path := range w.profile.BrightnessPaths {
		w.writeInt(path, 0)
	}
	for _, path := range w.profile.CurrentPaths {
		w.writeInt(path, maximumLEDCurrent)
	}

	w.writeString(w.profile.EngineModePath, engineModeLoad)
	w.writeString(w.profile.EngineLEDsPath, w.profile.MaskString())
	w.writeString(w.profile.EngineLoadPath, pattern)
	w.writeString(w.profile.EngineModePath, engineModeRun)
}

// writeSimple drives the two-channel controller: the fade-time registers
// get the fade duration when turning off and 0 otherwise, then both
// brightness registers get the target value.
func (w *Writer) writeSimple(fadeTime, brightness int) {
	regFade := 0
	if brightness == 0 {
		regFade = fadeTime
	}
	for _, path := range w.profile.FadeTimePaths {
		w.writeInt(path, regFade)
	}
	for _, path := range w.profile.BrightnessPaths {
		w.writeInt(path, brightness)
	}
}

func (w *Writer) writeString(path, value string) {
	if err := w.files.writeString(path, value); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func (w *Writer) writeInt(path string, value int) {
	if err := w.files.writeInt(path, value); err != nil {
		log.Printf("Warning: %v", err)
	}
}

// Close releases all pooled file handles. Call once during shutdown.
func (w *Writer) Close() {
	w.files.Close()
}
