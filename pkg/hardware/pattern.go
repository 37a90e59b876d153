package hardware

// The LP5523 engine program is a 16-hex-digit pattern:
// two remux bytes, the start brightness byte, the step speed/direction
// byte, the step count byte and a constant stop sequence. The layout is
// fixed by the hardware; only the three middle bytes vary.
const patternTemplate = "9d8040000000c000"

const hexDigits = "0123456789abcdef"

// Step speed registers accept 1-31; each unit step takes about 0.49ms.
const (
	minStepSpeed = 1
	maxStepSpeed = 31
)

// programEncoder turns brightness transitions into engine programs. It
// keeps the previously applied brightness as its own running state.
type programEncoder struct {
	old            int
	timeoutPending func() bool
}

// encode builds the engine program for a transition from the encoder's
// running brightness to the requested one over fadeTime milliseconds.
// fadeTime 0 means set immediately.
//
// Returns ok=false when the request must be ignored: if the backlight is
// at 0 and no disable timeout is pending, an incoming brightness value is
// an ambient-light adjustment for something nobody asked to illuminate,
// so no program is built and the running brightness stays untouched.
func (e *programEncoder) encode(brightness, fadeTime int) (string, bool) {
	if e.old == 0 && !e.timeoutPending() {
		return "", false
	}

	steps := brightness - e.old
	pattern := []byte(patternTemplate)

	if fadeTime == 0 || steps == 0 {
		// No fade: jump straight to the target. Writing the value even
		// when it equals the old one keeps the hardware in sync, and
		// skipping the fade branch avoids a division by zero.
		pokeByte(pattern, 6, brightness)
		pokeByte(pattern, 8, 0)
		pokeByte(pattern, 10, 0)
	} else {
		// The fade time is carried at x1000 precision through the
		// integer division so the 0.49ms-per-step quantization does
		// not lose the sub-millisecond part.
		stepSpeed := int((float64((fadeTime*1000)/abs(steps)) / 0.49) / 1000)

		if stepSpeed < minStepSpeed {
			stepSpeed = minStepSpeed
		} else if stepSpeed > maxStepSpeed {
			stepSpeed = maxStepSpeed
		}

		// The low bit is the direction: even increments, odd decrements.
		stepSpeed *= 2
		if steps < 0 {
			stepSpeed++
		}

		// The program fades from the current brightness to the target.
		pokeByte(pattern, 6, e.old)
		pokeByte(pattern, 8, stepSpeed)
		pokeByte(pattern, 10, abs(steps))
	}

	e.old = brightness
	return string(pattern), true
}

// pokeByte writes value's two hex nibbles at offset in the pattern.
func pokeByte(pattern []byte, offset, value int) {
	pattern[offset] = hexDigits[(value&0xf0)>>4]
	pattern[offset+1] = hexDigits[value&0x0f]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
