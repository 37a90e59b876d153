package hardware

import (
	"fmt"
	"os"
	"strings"
)

// DefaultSysfsRoot is where the kernel LED class exposes its devices.
const DefaultSysfsRoot = "/sys/class/leds"

const deviceTreeModelPath = "/proc/device-tree/model"

// Variant identifies the keypad backlight hardware on this device.
type Variant int

const (
	// VariantNone means no keypad backlight hardware; every operation
	// becomes a no-op.
	VariantNone Variant = iota
	// VariantLP5523A is the LP5523 LED engine wired to channels 0-5.
	VariantLP5523A
	// VariantLP5523B is the LP5523 LED engine wired to channels
	// 0-3, 7 and 8.
	VariantLP5523B
	// VariantSimple is the plain two-channel controller with separate
	// fade-time registers and no programmable engine.
	VariantSimple
)

// String returns the variant name as published on the state hash.
func (v Variant) String() string {
	switch v {
	case VariantLP5523A:
		return "lp5523-a"
	case VariantLP5523B:
		return "lp5523-b"
	case VariantSimple:
		return "simple"
	default:
		return "none"
	}
}

// Profile holds the channel paths and engine mask for one hardware
// variant. It is built once at startup and immutable afterwards.
type Profile struct {
	Variant     Variant
	ChannelMask uint16

	CurrentPaths    []string
	BrightnessPaths []string

	EngineModePath string
	EngineLoadPath string
	EngineLEDsPath string

	FadeTimePaths []string
}

// lp5523Channels maps each variant to the LP5523 channels driving the
// keypad LEDs.
var lp5523Channels = map[Variant][]int{
	VariantLP5523A: {0, 1, 2, 3, 4, 5},
	VariantLP5523B: {0, 1, 2, 3, 7, 8},
}

// productVariants maps known product identifiers to hardware variants.
var productVariants = map[string]Variant{
	"rm680": VariantLP5523A,
	"rm690": VariantLP5523A,
	"rx51":  VariantLP5523B,
	"rx44":  VariantSimple,
	"rx48":  VariantSimple,
}

// DetectProduct reads the device tree model and extracts a product
// identifier. Returns an empty string when the board is unknown.
func DetectProduct() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return ""
	}

	// Device tree model strings are NUL terminated.
	model := strings.ToLower(strings.TrimRight(string(data), "\x00"))
	for product := range productVariants {
		if strings.Contains(model, product) ||
			strings.Contains(model, strings.Replace(product, "rm", "rm-", 1)) ||
			strings.Contains(model, strings.Replace(product, "rx", "rx-", 1)) {
			return product
		}
	}
	return ""
}

// NewProfile resolves the hardware profile for the given product
// identifier, building channel paths under root. An unknown product
// resolves to the inert VariantNone profile rather than an error.
func NewProfile(product, root string) *Profile {
	if root == "" {
		root = DefaultSysfsRoot
	}

	variant, ok := productVariants[strings.ToLower(product)]
	if !ok {
		return &Profile{Variant: VariantNone}
	}

	switch variant {
	case VariantLP5523A, VariantLP5523B:
		return newLP5523Profile(variant, root)
	case VariantSimple:
		return newSimpleProfile(root)
	default:
		return &Profile{Variant: VariantNone}
	}
}

func newLP5523Profile(variant Variant, root string) *Profile {
	channels := lp5523Channels[variant]

	p := &Profile{Variant: variant}
	for _, ch := range channels {
		base := fmt.Sprintf("%s/lp5523:channel%d", root, ch)
		p.CurrentPaths = append(p.CurrentPaths, base+"/led_current")
		p.BrightnessPaths = append(p.BrightnessPaths, base+"/brightness")
		p.ChannelMask |= 1 << uint(ch)
	}

	// Engine 3 is controlled through the first channel's device node.
	engine := fmt.Sprintf("%s/lp5523:channel%d/device/engine3_", root, channels[0])
	p.EngineModePath = engine + "mode"
	p.EngineLoadPath = engine + "load"
	p.EngineLEDsPath = engine + "leds"

	return p
}

func newSimpleProfile(root string) *Profile {
	return &Profile{
		Variant: VariantSimple,
		BrightnessPaths: []string{
			root + "/cover/brightness",
			root + "/keyboard/brightness",
		},
		FadeTimePaths: []string{
			root + "/cover/fadetime",
			root + "/keyboard/fadetime",
		},
	}
}

// MaskString renders the channel mask as the 9-digit binary string the
// engine3_leds attribute expects, most significant channel first.
func (p *Profile) MaskString() string {
	return fmt.Sprintf("%09b", p.ChannelMask)
}
