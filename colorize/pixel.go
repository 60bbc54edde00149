package colorize

import (
	"errors"
	"image"
	"math"
)

// ErrEmptySurface is returned when a transform is asked to operate on a
// nil or zero-length pixel buffer.
var ErrEmptySurface = errors.New("colorize: empty pixel surface")

// Apply runs the exact per-pixel transform over img in place. This is
// the form used for export and analysis; the declarative form in
// Declarative is only a display-pipeline approximation of it.
//
// The channel pipeline is fixed: invert, then (when PreserveColor) a
// 180 degree hue rotation with a 1.1x saturation boost about the
// channel mean, then brightness, contrast, and sepia, with a single
// clamp at the end. Reordering any stage changes the output.
func Apply(img *image.RGBA, s Settings) error {
	if img == nil || len(img.Pix) == 0 {
		return ErrEmptySurface
	}
	if !s.DarkMode {
		return nil
	}
	s = s.Clamp()

	inversion := float64(s.Inversion) / 100
	brightness := float64(s.Brightness) / 100
	contrastFactor := (float64(s.Contrast)/100 - 0.5) * 2
	sepia := float64(s.Sepia) / 100

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			o := x * 4
			r := float64(row[o])
			g := float64(row[o+1])
			b := float64(row[o+2])

			r, g, b = transformChannels(r, g, b, inversion, brightness, contrastFactor, sepia, s.PreserveColor)

			row[o] = clampByte(r)
			row[o+1] = clampByte(g)
			row[o+2] = clampByte(b)
		}
	}
	return nil
}

// ApplyPix transforms a raw RGBA byte slice (4 bytes per pixel) in
// place. Callers holding pixel data outside an image.RGBA use this
// directly.
func ApplyPix(pix []byte, s Settings) error {
	if len(pix) == 0 || len(pix)%4 != 0 {
		return ErrEmptySurface
	}
	if !s.DarkMode {
		return nil
	}
	s = s.Clamp()

	inversion := float64(s.Inversion) / 100
	brightness := float64(s.Brightness) / 100
	contrastFactor := (float64(s.Contrast)/100 - 0.5) * 2
	sepia := float64(s.Sepia) / 100

	for o := 0; o < len(pix); o += 4 {
		r := float64(pix[o])
		g := float64(pix[o+1])
		b := float64(pix[o+2])

		r, g, b = transformChannels(r, g, b, inversion, brightness, contrastFactor, sepia, s.PreserveColor)

		pix[o] = clampByte(r)
		pix[o+1] = clampByte(g)
		pix[o+2] = clampByte(b)
	}
	return nil
}

func transformChannels(r, g, b, inversion, brightness, contrastFactor, sepia float64, preserveColor bool) (float64, float64, float64) {
	// Invert.
	r = r + (255-2*r)*inversion
	g = g + (255-2*g)*inversion
	b = b + (255-2*b)*inversion

	// Hue rotation restores the original hue identity that the
	// inversion flipped; the saturation boost counters the washed-out
	// look of rotated midtones.
	if preserveColor {
		h, sat, l := rgbToHSL(r, g, b)
		h = math.Mod(h+0.5, 1)
		r, g, b = hslToRGB(h, sat, l)

		mean := (r + g + b) / 3
		r = mean + (r-mean)*1.1
		g = mean + (g-mean)*1.1
		b = mean + (b-mean)*1.1
	}

	// Brightness.
	r *= brightness
	g *= brightness
	b *= brightness

	// Contrast about the midpoint.
	r = ((r/255-0.5)*(1+contrastFactor) + 0.5) * 255
	g = ((g/255-0.5)*(1+contrastFactor) + 0.5) * 255
	b = ((b/255-0.5)*(1+contrastFactor) + 0.5) * 255

	// Sepia blend.
	if sepia > 0 {
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		r = r + (sr-r)*sepia
		g = g + (sg-g)*sepia
		b = b + (sb-b)*sepia
	}

	return r, g, b
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
