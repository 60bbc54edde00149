package colorize

// Settings holds the dark-mode filter parameters. All numeric fields
// are percentages; out-of-range values are clamped, never rejected.
type Settings struct {
	// DarkMode enables the transform. When false the transform is the
	// identity and no per-pixel work happens.
	DarkMode bool
	// PreserveColor rotates hue by 180 degrees after inversion so that
	// photos and charts keep recognizable colors.
	PreserveColor bool
	// Inversion strength, 0-100.
	Inversion int
	// Brightness multiplier, 0-300 (100 = unchanged).
	Brightness int
	// Contrast, 0-300 (100 = unchanged).
	Contrast int
	// Sepia blend toward the standard sepia matrix, 0-100.
	Sepia int
}

// DefaultSettings are the shipped dark-mode defaults: a strong but not
// total inversion with slight warm toning.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:   true,
		Inversion:  90,
		Brightness: 90,
		Contrast:   90,
		Sepia:      10,
	}
}

// Clamp returns a copy with every numeric field forced into range.
// Every write path (options UI, URL parameters, stored sessions) is
// expected to pass settings through Clamp before use.
func (s Settings) Clamp() Settings {
	s.Inversion = clampInt(s.Inversion, 0, 100)
	s.Brightness = clampInt(s.Brightness, 0, 300)
	s.Contrast = clampInt(s.Contrast, 0, 300)
	s.Sepia = clampInt(s.Sepia, 0, 100)
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
