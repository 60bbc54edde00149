package colorize

import (
	"bytes"
	"image"
	"math"
	"testing"
)

func newUniform(w, h int, r, g, b byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 255
	}
	return img
}

func TestApplyDarkModeOffIsIdentity(t *testing.T) {
	img := newUniform(4, 4, 12, 200, 99)
	orig := append([]byte(nil), img.Pix...)

	s := Settings{DarkMode: false, Inversion: 100, Brightness: 300, Contrast: 300, Sepia: 100}
	if err := Apply(img, s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !bytes.Equal(img.Pix, orig) {
		t.Error("dark mode off must leave every pixel untouched")
	}
}

func TestApplyRejectsEmptySurface(t *testing.T) {
	if err := Apply(nil, DefaultSettings()); err != ErrEmptySurface {
		t.Errorf("nil image: err = %v, want ErrEmptySurface", err)
	}
	if err := Apply(&image.RGBA{}, DefaultSettings()); err != ErrEmptySurface {
		t.Errorf("empty image: err = %v, want ErrEmptySurface", err)
	}
	if err := ApplyPix([]byte{1, 2, 3}, DefaultSettings()); err != ErrEmptySurface {
		t.Errorf("misaligned pix: err = %v, want ErrEmptySurface", err)
	}
}

func TestApplyOutputStaysInRange(t *testing.T) {
	extremes := []Settings{
		{DarkMode: true, Inversion: 100, Brightness: 300, Contrast: 300, Sepia: 100},
		{DarkMode: true, Inversion: 0, Brightness: 0, Contrast: 0, Sepia: 0},
		{DarkMode: true, PreserveColor: true, Inversion: 100, Brightness: 300, Contrast: 300, Sepia: 100},
		{DarkMode: true, Inversion: 500, Brightness: -50, Contrast: 999, Sepia: -1},
	}
	colors := [][3]byte{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {17, 130, 244}, {128, 128, 128}}

	for _, s := range extremes {
		for _, c := range colors {
			img := newUniform(1, 1, c[0], c[1], c[2])
			if err := Apply(img, s); err != nil {
				t.Fatalf("apply %+v: %v", s, err)
			}
			// Byte storage already bounds the value; what matters is
			// that the alpha channel is never touched.
			if img.Pix[3] != 255 {
				t.Errorf("settings %+v on %v changed alpha to %d", s, c, img.Pix[3])
			}
		}
	}
}

func TestDefaultsDarkenWhite(t *testing.T) {
	img := newUniform(1, 1, 255, 255, 255)
	if err := Apply(img, DefaultSettings()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	for ch := 0; ch < 3; ch++ {
		if img.Pix[ch] >= 255 {
			t.Errorf("channel %d = %d, want < 255", ch, img.Pix[ch])
		}
	}
}

func TestHueRoundTripInvariant(t *testing.T) {
	s := Settings{
		DarkMode:      true,
		PreserveColor: true,
		Inversion:     100,
		Brightness:    100,
		Contrast:      50, // multiplier 1.0, no contrast adjustment
		Sepia:         0,
	}
	colors := [][3]byte{
		{200, 40, 40},   // red
		{40, 200, 40},   // green
		{60, 90, 220},   // blue
		{230, 180, 60},  // amber
		{150, 60, 200},  // violet
	}
	for _, c := range colors {
		wantH, _, _ := rgbToHSL(float64(c[0]), float64(c[1]), float64(c[2]))

		img := newUniform(1, 1, c[0], c[1], c[2])
		if err := Apply(img, s); err != nil {
			t.Fatalf("apply: %v", err)
		}
		gotH, _, _ := rgbToHSL(float64(img.Pix[0]), float64(img.Pix[1]), float64(img.Pix[2]))

		diff := math.Abs(gotH - wantH)
		if diff > 0.5 {
			diff = 1 - diff // hue wraps
		}
		if diff > 0.03 {
			t.Errorf("color %v: hue = %.3f, want %.3f (diff %.3f)", c, gotH, wantH, diff)
		}
	}
}

func TestInversionMonotonicOnWhite(t *testing.T) {
	prev := math.Inf(1)
	for inv := 0; inv <= 100; inv += 10 {
		s := Settings{DarkMode: true, Inversion: inv, Brightness: 100, Contrast: 50}
		img := newUniform(1, 1, 255, 255, 255)
		if err := Apply(img, s); err != nil {
			t.Fatalf("apply: %v", err)
		}
		lum := float64(img.Pix[0])
		if lum > prev {
			t.Errorf("inversion %d: luminance %g rose above %g", inv, lum, prev)
		}
		prev = lum
	}
}

func TestBrightnessMonotonic(t *testing.T) {
	prev := -1.0
	for b := 0; b <= 300; b += 50 {
		s := Settings{DarkMode: true, Inversion: 0, Brightness: b, Contrast: 50}
		img := newUniform(1, 1, 100, 100, 100)
		if err := Apply(img, s); err != nil {
			t.Fatalf("apply: %v", err)
		}
		lum := float64(img.Pix[0])
		if lum < prev {
			t.Errorf("brightness %d: luminance %g fell below %g", b, lum, prev)
		}
		prev = lum
	}
}

func TestApplyPixMatchesApply(t *testing.T) {
	img := newUniform(2, 2, 10, 150, 240)
	pix := append([]byte(nil), img.Pix...)

	s := DefaultSettings()
	s.PreserveColor = true
	if err := Apply(img, s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := ApplyPix(pix, s); err != nil {
		t.Fatalf("apply pix: %v", err)
	}
	if !bytes.Equal(img.Pix, pix) {
		t.Error("ApplyPix and Apply disagree on identical input")
	}
}

func TestClampSettings(t *testing.T) {
	s := Settings{Inversion: -5, Brightness: 999, Contrast: -1, Sepia: 101}.Clamp()
	if s.Inversion != 0 || s.Brightness != 300 || s.Contrast != 0 || s.Sepia != 100 {
		t.Errorf("clamp produced %+v", s)
	}
}
