package coords

import (
	"errors"
	"math"
)

// Matrix is a 2D affine transform in the order [a b c d e f]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix [6]float64

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate builds a rotation matrix for angle radians, counter-clockwise.
func Rotate(angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}

// Multiply returns m applied first, then o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

type Point struct{ X, Y float64 }

func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Rect is an axis-aligned rectangle with Min at the top-left corner.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// TransformRect maps all four corners through m and returns their
// bounding box. Rotations by multiples of 90 degrees keep the result
// axis-exact.
func (m Matrix) TransformRect(r Rect) Rect {
	corners := [4]Point{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MinX, r.MaxY},
		{r.MaxX, r.MaxY},
	}
	out := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, c := range corners {
		p := m.Transform(c)
		out.MinX = math.Min(out.MinX, p.X)
		out.MinY = math.Min(out.MinY, p.Y)
		out.MaxX = math.Max(out.MaxX, p.X)
		out.MaxY = math.Max(out.MaxY, p.Y)
	}
	return out
}

// PageToViewport builds the transform from unscaled page space (origin
// top-left, y down) into viewport pixel space for the given scale and
// quadrant rotation. pageW and pageH are the unscaled page dimensions;
// the rotated result is translated back into the positive quadrant so
// that the page's bounding box starts at (0,0).
func PageToViewport(scale float64, rotation int, pageW, pageH float64) Matrix {
	m := Scale(scale, scale)
	switch normalizeRotation(rotation) {
	case 90:
		m = m.Multiply(Rotate(math.Pi / 2)).Multiply(Translate(pageH*scale, 0))
	case 180:
		m = m.Multiply(Rotate(math.Pi)).Multiply(Translate(pageW*scale, pageH*scale))
	case 270:
		m = m.Multiply(Rotate(3 * math.Pi / 2)).Multiply(Translate(0, pageW*scale))
	}
	return m
}

// RotatedSize returns the pixel dimensions of a page rendered at scale
// with the given quadrant rotation.
func RotatedSize(scale float64, rotation int, pageW, pageH float64) (w, h float64) {
	if normalizeRotation(rotation)%180 == 90 {
		return pageH * scale, pageW * scale
	}
	return pageW * scale, pageH * scale
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
