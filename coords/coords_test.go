package coords

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestIdentityTransform(t *testing.T) {
	p := Identity().Transform(Point{X: 3, Y: 4})
	if !almostEqual(p.X, 3) || !almostEqual(p.Y, 4) {
		t.Fatalf("identity moved point: %+v", p)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Scale(2, 3).Multiply(Translate(10, -5))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	p := Point{X: 7, Y: 11}
	back := inv.Transform(m.Transform(p))
	if !almostEqual(back.X, p.X) || !almostEqual(back.Y, p.Y) {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}

func TestSingularInverse(t *testing.T) {
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Fatal("expected error for singular matrix")
	}
}

func TestPageToViewportQuadrants(t *testing.T) {
	const pageW, pageH = 100.0, 200.0
	page := Rect{MinX: 0, MinY: 0, MaxX: pageW, MaxY: pageH}

	cases := []struct {
		rotation int
		wantW    float64
		wantH    float64
	}{
		{0, 100, 200},
		{90, 200, 100},
		{180, 100, 200},
		{270, 200, 100},
		{360, 100, 200},
	}
	for _, c := range cases {
		m := PageToViewport(1.0, c.rotation, pageW, pageH)
		got := m.TransformRect(page)
		if !almostEqual(got.MinX, 0) || !almostEqual(got.MinY, 0) {
			t.Errorf("rotation %d: origin = (%g,%g), want (0,0)", c.rotation, got.MinX, got.MinY)
		}
		if !almostEqual(got.Width(), c.wantW) || !almostEqual(got.Height(), c.wantH) {
			t.Errorf("rotation %d: size = (%g,%g), want (%g,%g)",
				c.rotation, got.Width(), got.Height(), c.wantW, c.wantH)
		}
	}
}

func TestRotatedSizeMatchesTransform(t *testing.T) {
	w, h := RotatedSize(2.0, 90, 100, 200)
	if !almostEqual(w, 400) || !almostEqual(h, 200) {
		t.Errorf("rotated size = (%g,%g), want (400,200)", w, h)
	}
}

func TestFourRotationsRestoreDimensions(t *testing.T) {
	w, h := 100.0, 200.0
	rotation := 0
	for i := 0; i < 4; i++ {
		rotation = (rotation + 90) % 360
	}
	gotW, gotH := RotatedSize(1.0, rotation, w, h)
	if !almostEqual(gotW, w) || !almostEqual(gotH, h) {
		t.Errorf("after four rotations size = (%g,%g), want (%g,%g)", gotW, gotH, w, h)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}
	if !r.Contains(15, 15) {
		t.Error("point inside reported outside")
	}
	if r.Contains(25, 15) {
		t.Error("point outside reported inside")
	}
}
