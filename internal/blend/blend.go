// Package blend implements the per-mode compositing contract as a table of
// pure functions. The table is the unit other packages dispatch on; adding a
// mode means adding a function here and nothing else.
//
// The contract for every mode: given a base color, an overlay color and a
// scalar factor f (the layer's opacity multiplied by its alpha), the result
// equals the base when f is 0 and the fully-applied mode when f is 1. Alpha
// composites separately with standard alpha-over accumulation.
package blend

import (
	"fmt"
	"sort"
)

// Mode names a blend function. Unknown modes are a configuration error
// surfaced at composition time, never a silent fallback.
type Mode string

const (
	Normal   Mode = "normal"
	Multiply Mode = "multiply"
	Add      Mode = "add"
	Screen   Mode = "screen"
)

// RGB is a linear-space color triple.
type RGB struct {
	R, G, B float64
}

// Func combines a base and an overlay color given the scalar factor.
type Func func(base, over RGB, f float64) RGB

var table = map[Mode]Func{
	Normal: func(base, over RGB, f float64) RGB {
		return lerp(base, over, f)
	},
	Multiply: func(base, over RGB, f float64) RGB {
		return lerp(base, mul(base, over), f)
	},
	Add: func(base, over RGB, f float64) RGB {
		return clampRGB(RGB{base.R + over.R*f, base.G + over.G*f, base.B + over.B*f})
	},
	Screen: func(base, over RGB, f float64) RGB {
		screen := RGB{
			1 - (1-base.R)*(1-over.R),
			1 - (1-base.G)*(1-over.G),
			1 - (1-base.B)*(1-over.B),
		}
		return lerp(base, screen, f)
	},
}

// Apply runs the blend function for mode. It returns an error for a mode not
// present in the table.
func Apply(mode Mode, base, over RGB, f float64) (RGB, error) {
	fn, ok := table[mode]
	if !ok {
		return RGB{}, fmt.Errorf("unknown blend mode %q", mode)
	}
	return fn(base, over, clamp01(f)), nil
}

// Valid reports whether mode has an entry in the table.
func Valid(mode Mode) bool {
	_, ok := table[mode]
	return ok
}

// Modes returns all registered mode names, sorted for stable output.
func Modes() []Mode {
	modes := make([]Mode, 0, len(table))
	for m := range table {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// AlphaOver accumulates an overlay alpha onto a base alpha:
// result = base + over*(1-base).
func AlphaOver(baseAlpha, overAlpha float64) float64 {
	return clamp01(baseAlpha + overAlpha*(1-baseAlpha))
}

func lerp(a, b RGB, t float64) RGB {
	return RGB{
		a.R + (b.R-a.R)*t,
		a.G + (b.G-a.G)*t,
		a.B + (b.B-a.B)*t,
	}
}

func mul(a, b RGB) RGB {
	return RGB{a.R * b.R, a.G * b.G, a.B * b.B}
}

func clampRGB(c RGB) RGB {
	return RGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
