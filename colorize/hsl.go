package colorize

import "math"

// rgbToHSL converts 8-bit RGB to HSL with all components in [0,1].
func rgbToHSL(r, g, b float64) (h, s, l float64) {
	rf := r / 255
	gf := g / 255
	bf := b / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))

	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	case bf:
		h = (rf-gf)/d + 4
	}
	h /= 6
	return h, s, l
}

// hslToRGB converts HSL components in [0,1] back to 8-bit RGB, still as
// floats so callers can keep accumulating before the final clamp.
func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		gray := l * 255
		return gray, gray, gray
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToRGB(p, q, h+1.0/3.0) * 255
	g = hueToRGB(p, q, h) * 255
	b = hueToRGB(p, q, h-1.0/3.0) * 255
	return r, g, b
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
