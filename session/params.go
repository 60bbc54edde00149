// Package session round-trips viewer state through URL query
// parameters and persists per-document reading positions keyed by
// content fingerprint.
package session

import (
	"net/url"
	"strconv"

	"github.com/duskview/duskview/colorize"
)

// Query parameter bounds. Zoom is deliberately tighter than the
// viewport's own scale range since shared links should open at a
// sensible magnification.
const (
	MinPageParam = 1
	MaxPageParam = 10000
	MinZoomParam = 0.5
	MaxZoomParam = 3.0
)

// State is the URL-shareable slice of viewer state.
type State struct {
	Settings colorize.Settings
	Page     int
	Zoom     float64
}

// DefaultState returns the state used when parameters are absent or
// unparseable.
func DefaultState() State {
	return State{Settings: colorize.DefaultSettings(), Page: 1, Zoom: 1.0}
}

// ParseQuery reads viewer state from query parameters. Every parameter
// is independently optional and independently clamped; garbage falls
// back to the default silently. It never returns an error.
func ParseQuery(values url.Values) State {
	st := DefaultState()
	st.Settings.DarkMode = parseBool(values.Get("dark"), st.Settings.DarkMode)
	st.Settings.PreserveColor = parseBool(values.Get("preserve"), st.Settings.PreserveColor)
	st.Settings.Inversion = parseClampedInt(values.Get("invert"), st.Settings.Inversion, 0, 100)
	st.Settings.Brightness = parseClampedInt(values.Get("brightness"), st.Settings.Brightness, 0, 300)
	st.Settings.Contrast = parseClampedInt(values.Get("contrast"), st.Settings.Contrast, 0, 300)
	st.Settings.Sepia = parseClampedInt(values.Get("sepia"), st.Settings.Sepia, 0, 100)
	st.Page = parseClampedInt(values.Get("page"), st.Page, MinPageParam, MaxPageParam)
	st.Zoom = parseClampedFloat(values.Get("zoom"), st.Zoom, MinZoomParam, MaxZoomParam)
	return st
}

// EncodeQuery writes the state into query parameters. Values matching
// the defaults are omitted so shared URLs stay short.
func EncodeQuery(st State) url.Values {
	def := DefaultState()
	values := url.Values{}
	if st.Settings.DarkMode != def.Settings.DarkMode {
		values.Set("dark", formatBool(st.Settings.DarkMode))
	}
	if st.Settings.PreserveColor != def.Settings.PreserveColor {
		values.Set("preserve", formatBool(st.Settings.PreserveColor))
	}
	if st.Settings.Inversion != def.Settings.Inversion {
		values.Set("invert", strconv.Itoa(st.Settings.Inversion))
	}
	if st.Settings.Brightness != def.Settings.Brightness {
		values.Set("brightness", strconv.Itoa(st.Settings.Brightness))
	}
	if st.Settings.Contrast != def.Settings.Contrast {
		values.Set("contrast", strconv.Itoa(st.Settings.Contrast))
	}
	if st.Settings.Sepia != def.Settings.Sepia {
		values.Set("sepia", strconv.Itoa(st.Settings.Sepia))
	}
	if st.Page != def.Page {
		values.Set("page", strconv.Itoa(st.Page))
	}
	if st.Zoom != def.Zoom {
		values.Set("zoom", strconv.FormatFloat(st.Zoom, 'g', -1, 64))
	}
	return values
}

func parseBool(raw string, def bool) bool {
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func parseClampedInt(raw string, def, min, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func parseClampedFloat(raw string, def, min, max float64) float64 {
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
