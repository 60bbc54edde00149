package viewport

// FitMode selects how the display scale is derived. Manual zoom and
// automatic fit are mutually exclusive: any relative zoom action
// transitions the mode to FitManual, and a fit action replaces the
// manually chosen scale.
type FitMode int

const (
	// FitManual means the user owns the scale directly.
	FitManual FitMode = iota
	// FitWidth derives scale so the page width fills the container.
	FitWidth
	// FitHeight derives scale so the page height fills the container.
	FitHeight
)

func (m FitMode) String() string {
	switch m {
	case FitWidth:
		return "width"
	case FitHeight:
		return "height"
	default:
		return "manual"
	}
}

// Geometry is an immutable snapshot of the viewport parameters a render
// depends on. Consumers take one snapshot at the start of an operation
// and never re-read live state mid-render.
type Geometry struct {
	Scale    float64
	Rotation int
}

// State mirrors the full viewport state for persistence and display.
type State struct {
	Scale       float64
	Rotation    int
	Fit         FitMode
	CurrentPage int
	TotalPages  int
}

// Scale bounds and stepping shared by every zoom path.
const (
	MinScale = 0.01
	MaxScale = 9.0
	ZoomStep = 0.2

	// fitPadding is subtracted from the container dimension before the
	// fit scale is derived, leaving a visual gutter around the page.
	fitPadding = 32
)

func clampScale(s, min, max float64) float64 {
	if s < min {
		return min
	}
	if s > max {
		return max
	}
	return s
}
