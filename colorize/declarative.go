package colorize

import (
	"fmt"
	"strings"
)

// FilterFunc identifies one function in a declarative filter chain.
type FilterFunc string

const (
	FuncInvert     FilterFunc = "invert"
	FuncHueRotate  FilterFunc = "hue-rotate"
	FuncSaturate   FilterFunc = "saturate"
	FuncBrightness FilterFunc = "brightness"
	FuncContrast   FilterFunc = "contrast"
	FuncSepia      FilterFunc = "sepia"
)

// FilterStep is one entry in the ordered declarative chain.
type FilterStep struct {
	Func FilterFunc
	// Value is the function argument: a percentage for most functions,
	// degrees for hue-rotate.
	Value float64
}

// Filter is the declarative equivalent of the exact pixel transform,
// intended for a display layer that composites CSS-style filter
// functions. It approximates Apply: the two agree on identity, hue
// handling in color-preserve mode, and per-slider monotonicity, but
// not bit-for-bit output.
type Filter struct {
	Steps []FilterStep
}

// IsIdentity reports whether the filter performs no work.
func (f Filter) IsIdentity() bool { return len(f.Steps) == 0 }

// String renders the chain as a CSS filter value, e.g.
// "invert(90%) brightness(90%) contrast(90%) sepia(10%)".
// An identity filter renders as "none".
func (f Filter) String() string {
	if f.IsIdentity() {
		return "none"
	}
	parts := make([]string, 0, len(f.Steps))
	for _, st := range f.Steps {
		switch st.Func {
		case FuncHueRotate:
			parts = append(parts, fmt.Sprintf("%s(%gdeg)", st.Func, st.Value))
		default:
			parts = append(parts, fmt.Sprintf("%s(%g%%)", st.Func, st.Value))
		}
	}
	return strings.Join(parts, " ")
}

// Declarative composes the filter chain for the given settings. The
// step order mirrors the pixel pipeline: invert, hue-rotate+saturate
// when color preservation is on, then brightness, contrast, sepia.
// Dark mode off yields the identity chain.
func Declarative(s Settings) Filter {
	if !s.DarkMode {
		return Filter{}
	}
	s = s.Clamp()

	steps := []FilterStep{{Func: FuncInvert, Value: float64(s.Inversion)}}
	if s.PreserveColor {
		steps = append(steps,
			FilterStep{Func: FuncHueRotate, Value: 180},
			FilterStep{Func: FuncSaturate, Value: 110},
		)
	}
	steps = append(steps,
		FilterStep{Func: FuncBrightness, Value: float64(s.Brightness)},
		FilterStep{Func: FuncContrast, Value: float64(s.Contrast)},
	)
	if s.Sepia > 0 {
		steps = append(steps, FilterStep{Func: FuncSepia, Value: float64(s.Sepia)})
	}
	return Filter{Steps: steps}
}
